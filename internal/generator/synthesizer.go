package generator

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/registry"
	"github.com/toyz/synapse/internal/rewriter"
	"github.com/toyz/synapse/internal/templates"
	"github.com/toyz/synapse/pkg/synapse"
)

// HandlerName is the generated struct name and token of a method's handler
func HandlerName(method string) string {
	return method + "Handler"
}

// synthesize produces the handler of one annotated method. Provider ids
// are registered in deps, so a repeated id anywhere in the aggregate
// aborts the expansion.
func (e *Expander) synthesize(ctx *fileContext, agg *models.AggregateDefinition, m *models.MethodDefinition, deps *registry.DependencyInfo) (*models.GeneratedArtifact, error) {
	verb, path, err := annotations.ExtractRoute(m.Verb)
	if err != nil {
		return nil, err
	}
	method, err := synapse.ParseHttpMethod(verb)
	if err != nil {
		return nil, errors.NewUnknownHttpMethodError(verb, supportedMethods()).WithLocation(m.Verb.Location)
	}

	name := HandlerName(m.Name)
	if err := checkSignature(ctx.runtime, m); err != nil {
		return nil, err
	}

	body, err := rewriter.CloneBody(ctx.source.Fset, ctx.source.File, m.Decl)
	if err != nil {
		return nil, errors.WrapGenerateError("handler", name, err).WithTargetFile(ctx.source.Path)
	}

	opts := []rewriter.Option{rewriter.WithRuntimeName(ctx.runtime)}
	if ctx.resolver != nil {
		opts = append(opts, rewriter.WithResolver(ctx.resolver))
	}
	injections := rewriter.New(agg.Name, m.Receiver, deps.Fields, opts...).Rewrite(body.Block)

	fields := make([]models.FieldDefinition, 0, len(injections))
	allowed := make(map[string]bool, len(injections))
	for _, inj := range injections {
		id := inj.ProviderID()
		if err := deps.Registry.Register(id); err != nil {
			return nil, errors.NewDependencyConflictError(id, name).WithLocation(m.Location)
		}
		field := inj.HandlerField()
		if allowed[field] {
			return nil, errors.NewValidationErrorf(field,
				"handler '%s' derives field '%s' from two different dependency calls", name, field).
				WithLocation(m.Location)
		}
		allowed[field] = true
		fields = append(fields, models.FieldDefinition{Name: field, CapabilityType: ctx.runtime + ".Provider"})
	}

	if leftover := rewriter.LeftoverMembers(body.Block, m.Receiver, allowed); len(leftover) > 0 {
		return nil, errors.NewValidationErrorf(m.Name,
			"method '%s' uses %s.%s, which is not an injected dependency call", m.Name, m.Receiver, strings.Join(leftover, ", "+m.Receiver+".")).
			WithLocation(m.Location).
			WithSuggestion("handlers only carry injected dependencies; call them as " + m.Receiver + ".<Field>.<Method>(...)")
	}

	resultNames, preamble := namedResults(m.Decl.Type)
	hasResults := m.Decl.Type.Results != nil && m.Decl.Type.Results.NumFields() > 0
	rewriter.NewNormalizer(ctx.runtime).Normalize(body.Block, resultNames, hasResults)

	src, err := body.Source()
	if err != nil {
		return nil, errors.WrapGenerateError("handler", name, err).WithStage("print")
	}
	if preamble != "" {
		src = "{\n" + preamble + strings.TrimPrefix(src, "{")
	}

	route := agg.Prefix + path
	source, err := e.templates.RenderHandler(templates.HandlerData{
		Name:         name,
		Aggregate:    agg.Name,
		MethodName:   m.Name,
		Method:       method.String(),
		MethodConst:  method.ConstName(),
		Route:        route,
		Receiver:     handlerReceiver(m.Receiver),
		RequestParam: requestParam(m.RequestParam),
		Runtime:      ctx.runtime,
		Fields:       fields,
		Body:         src,
	})
	if err != nil {
		return nil, err
	}

	return &models.GeneratedArtifact{
		HandlerName: name,
		MethodName:  m.Name,
		Verb:        verb,
		Method:      method,
		Route:       route,
		Fields:      fields,
		Injections:  injections,
		Source:      source,
	}, nil
}

// checkSignature accepts methods taking nothing or a single
// *<runtime>.HttpRequest
func checkSignature(runtime string, m *models.MethodDefinition) error {
	params := m.Decl.Type.Params
	if params == nil || params.NumFields() == 0 {
		return nil
	}

	expected := "*" + runtime + ".HttpRequest"
	if params.NumFields() > 1 {
		return errors.NewValidationError(m.Name, "at most one parameter of type "+expected,
			fmt.Sprintf("%d parameters", params.NumFields())).
			WithLocation(m.Location).
			WithSuggestion("read path, query and body values from the request")
	}
	if actual := types.ExprString(params.List[0].Type); actual != expected {
		return errors.NewValidationError(m.Name, expected, actual).WithLocation(m.Location)
	}
	return nil
}

// namedResults returns the identifiers a bare return passes on and the
// declarations that introduce them in the handler body. Blank results get
// a generated name.
func namedResults(fn *ast.FuncType) ([]string, string) {
	if fn.Results == nil || len(fn.Results.List) == 0 || len(fn.Results.List[0].Names) == 0 {
		return nil, ""
	}

	var names []string
	var preamble strings.Builder
	for _, field := range fn.Results.List {
		typ := types.ExprString(field.Type)
		for _, ident := range field.Names {
			name := ident.Name
			if name == "_" {
				name = fmt.Sprintf("_r%d", len(names))
			}
			names = append(names, name)
			fmt.Fprintf(&preamble, "\tvar %s %s\n\t_ = %s\n", name, typ, name)
		}
	}
	return names, preamble.String()
}

func handlerReceiver(receiver string) string {
	if receiver == "" || receiver == "_" {
		return "h"
	}
	return receiver
}

func requestParam(param string) string {
	if param == "" {
		return "_"
	}
	return param
}

func supportedMethods() []string {
	methods := synapse.Methods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return names
}
