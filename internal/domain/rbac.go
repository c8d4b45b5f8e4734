package domain

// EnforceRequest asks whether any of Roles may perform Action on Resource.
type EnforceRequest struct {
	Roles    []string `json:"roles"`
	Resource string   `json:"resource" binding:"required"`
	Action   string   `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
