package rbac

import (
	"sync"

	"go-leaveflow/internal/domain"
	"go-leaveflow/internal/workflow"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	s := &service{enforcer: enforcer, logger: l}
	if err := s.LoadPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadPolicy replaces the enforcer policy with the static role table.
func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	policies := Policies()
	if _, err := s.enforcer.AddPolicies(policies); err != nil {
		return err
	}

	groupings := GroupingPolicies()
	if _, err := s.enforcer.AddGroupingPolicies(groupings); err != nil {
		return err
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("policies", len(policies)),
		zap.Int("groupings", len(groupings)),
	)
	return nil
}

// Enforce allows the request when any recognised role is allowed. Unknown role
// names are ignored and an empty set is treated as a plain educator.
func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	roles := workflow.ParseRoleSet(req.Roles)
	if roles.IsEmpty() {
		roles = workflow.NewRoleSet(workflow.RoleEducator)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range roles.Strings() {
		allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
		if err != nil {
			s.logger.Error("rbac enforce failed",
				zap.String("role", role),
				zap.String("resource", req.Resource),
				zap.String("action", req.Action),
				zap.Error(err),
			)
			return false, err
		}
		if allowed {
			return true, nil
		}
	}

	s.logger.Debug("rbac enforce denied",
		zap.Strings("roles", roles.Strings()),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
	)
	return false, nil
}
