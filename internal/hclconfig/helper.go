package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/monogrid/internal/config"
	"github.com/specialistvlad/monogrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional expression fields with
// zero-width placeholders, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// decodeProjects evaluates the `projects` attribute. A list is a set of
// discovery globs; a map is an explicit ID to source mapping.
func decodeProjects(expr hcl.Expression, evalCtx *hcl.EvalContext) (config.ProjectsSourceMap, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return config.ProjectsSourceMap{}, nil
	}

	ty := val.Type()
	switch {
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		list, err := convert.Convert(val, cty.List(cty.String))
		if err != nil {
			return nil, fmt.Errorf("projects: expected a list of globs: %w", err)
		}
		var globs []string
		if err := gocty.FromCtyValue(list, &globs); err != nil {
			return nil, fmt.Errorf("projects: %w", err)
		}
		return config.ProjectsFromGlobs(globs), nil

	case ty.IsObjectType() || ty.IsMapType():
		m, err := convert.Convert(val, cty.Map(cty.String))
		if err != nil {
			return nil, fmt.Errorf("projects: expected a map of project sources: %w", err)
		}
		var projects map[string]string
		if err := gocty.FromCtyValue(m, &projects); err != nil {
			return nil, fmt.Errorf("projects: %w", err)
		}
		return config.ProjectsSourceMap(projects), nil
	}
	return nil, fmt.Errorf("projects: expected a map or a list, got %s", ty.FriendlyName())
}
