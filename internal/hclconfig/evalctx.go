package hclconfig

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/zclconf/go-cty/cty"
)

func workspaceObject(root string) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"root": cty.StringVal(root),
	})
}

// workspaceEvalContext is used for workspace level files.
func workspaceEvalContext(root string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"workspace": workspaceObject(root),
		},
	}
}

// projectEvalContext is used for a project's own file.
func projectEvalContext(scope config.ProjectScope) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"workspace": workspaceObject(scope.WorkspaceRoot),
			"project": cty.ObjectVal(map[string]cty.Value{
				"id":     cty.StringVal(scope.ID),
				"root":   cty.StringVal(scope.Root),
				"source": cty.StringVal(scope.Source),
			}),
		},
	}
}
