package cli

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/UfukSeker41/api-controller/pkg/catalog"
)

// apiEnv is the environment a --where expression sees for one API.
func apiEnv(api *catalog.API) map[string]any {
	categories := api.Categories
	if categories == nil {
		categories = []string{}
	}
	tags := api.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":         api.ID,
		"name":       api.Name,
		"version":    api.Version,
		"baseUrl":    api.BaseURL,
		"auth":       string(api.Authentication.Type),
		"endpoints":  api.EndpointCount(),
		"categories": categories,
		"tags":       tags,
		"popularity": api.Popularity,
	}
}

// compileWhere compiles a --where expression. It must evaluate to a bool.
func compileWhere(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(apiEnv(&catalog.API{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid --where expression: %w", err)
	}
	return program, nil
}

// filterAPIs keeps the APIs for which expression is true. An empty
// expression keeps everything.
func filterAPIs(apis []catalog.API, expression string) ([]catalog.API, error) {
	if expression == "" {
		return apis, nil
	}
	program, err := compileWhere(expression)
	if err != nil {
		return nil, err
	}

	kept := make([]catalog.API, 0, len(apis))
	for i := range apis {
		result, err := expr.Run(program, apiEnv(&apis[i]))
		if err != nil {
			return nil, fmt.Errorf("eval --where for api %q: %w", apis[i].ID, err)
		}
		if result.(bool) {
			kept = append(kept, apis[i])
		}
	}
	logger.Debug("filtered apis", "where", expression, "kept", len(kept), "of", len(apis))
	return kept, nil
}
