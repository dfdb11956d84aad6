// Package authz builds the casbin enforcer guarding the admin surface.
package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var Module = fx.Module("authz", fx.Provide(ProvideEnforcer))

// ProvideEnforcer returns an in-memory enforcer with the single policy the
// service needs: the admin role may call anything under /admin.
func ProvideEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := enforcer.AddPolicy("admin", "/admin/*", "*"); err != nil {
		return nil, err
	}

	return enforcer, nil
}
