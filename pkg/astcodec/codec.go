// Package astcodec decodes syntax tree documents emitted by the external
// parser into ast nodes. Documents are JSON or YAML maps whose "type" field
// carries the node discriminator.
package astcodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lolsborn/quest-sub012/pkg/ast"
)

// DecodeJSON parses a JSON AST document into a module.
func DecodeJSON(data []byte) (*ast.Module, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astcodec: parse json: %w", err)
	}
	return decodeModule(raw)
}

// DecodeYAML parses a YAML AST document into a module.
func DecodeYAML(data []byte) (*ast.Module, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astcodec: parse yaml: %w", err)
	}
	return decodeModule(raw)
}

// DecodeFile loads a module document, choosing the format by extension.
func DecodeFile(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("astcodec: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

func decodeModule(raw map[string]any) (*ast.Module, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	mod, ok := node.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("astcodec: document root is %s, want Module", node.NodeType())
	}
	return mod, nil
}

func decodeNode(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeModule:
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return ast.Mod(body...), nil

	case ast.NodeIdentifier:
		name, _ := node["name"].(string)
		return ast.ID(name), nil
	case ast.NodeNilLiteral:
		return ast.Nil(), nil
	case ast.NodeBoolLiteral:
		val, _ := node["value"].(bool)
		return ast.Bool(val), nil
	case ast.NodeIntLiteral:
		val, err := asInt64(node["value"])
		if err != nil {
			return nil, fmt.Errorf("astcodec: int literal: %w", err)
		}
		return ast.Int(val), nil
	case ast.NodeBigIntLiteral:
		digits, err := asDigits(node["value"])
		if err != nil {
			return nil, fmt.Errorf("astcodec: bigint literal: %w", err)
		}
		return ast.BigInt(digits), nil
	case ast.NodeFloatLiteral:
		val, err := asFloat64(node["value"])
		if err != nil {
			return nil, fmt.Errorf("astcodec: float literal: %w", err)
		}
		return ast.Float(val), nil
	case ast.NodeDecimalLiteral:
		text, err := asDigits(node["value"])
		if err != nil {
			return nil, fmt.Errorf("astcodec: decimal literal: %w", err)
		}
		return ast.Dec(text), nil
	case ast.NodeStringLiteral:
		val, _ := node["value"].(string)
		return ast.Str(val), nil
	case ast.NodeBytesLiteral:
		encoded, _ := node["value"].(string)
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("astcodec: bytes literal: %w", err)
		}
		return ast.Bytes(decoded), nil

	case ast.NodeArrayLiteral:
		elements, err := decodeExpressions(node["elements"])
		if err != nil {
			return nil, err
		}
		return ast.Arr(elements...), nil
	case ast.NodeDictLiteral:
		entriesRaw, _ := node["entries"].([]any)
		entries := make([]ast.DictEntry, 0, len(entriesRaw))
		for _, raw := range entriesRaw {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("astcodec: invalid dict entry %T", raw)
			}
			key, err := decodeExpression(m["key"])
			if err != nil {
				return nil, err
			}
			value, err := decodeExpression(m["value"])
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.Entry(key, value))
		}
		return ast.Dict(entries...), nil

	case ast.NodeUnaryExpression:
		op, _ := node["operator"].(string)
		operand, err := decodeExpression(node["operand"])
		if err != nil {
			return nil, err
		}
		return ast.Un(op, operand), nil
	case ast.NodeBinaryExpression:
		op, _ := node["operator"].(string)
		left, err := decodeExpression(node["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"])
		if err != nil {
			return nil, err
		}
		return ast.Bin(op, left, right), nil
	case ast.NodeCallExpression:
		callee, err := decodeExpression(node["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(node["args"])
		if err != nil {
			return nil, err
		}
		namedRaw, _ := node["named"].([]any)
		named := make([]*ast.NamedArgument, 0, len(namedRaw))
		for _, raw := range namedRaw {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("astcodec: invalid named argument %T", raw)
			}
			name, _ := m["name"].(string)
			value, err := decodeExpression(m["value"])
			if err != nil {
				return nil, err
			}
			named = append(named, ast.Named(name, value))
		}
		return ast.CallKw(callee, args, named...), nil
	case ast.NodeMemberAccess:
		object, err := decodeExpression(node["object"])
		if err != nil {
			return nil, err
		}
		member, _ := node["member"].(string)
		return ast.Member(object, member), nil
	case ast.NodeIndexExpression:
		object, err := decodeExpression(node["object"])
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(node["index"])
		if err != nil {
			return nil, err
		}
		return ast.Index(object, index), nil
	case ast.NodeFunctionLiteral:
		params, err := decodeParameters(node["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return ast.Lam(params, body...), nil

	case ast.NodeLetStatement:
		name, _ := node["name"].(string)
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.Let(name, value), nil
	case ast.NodeAssignStatement:
		target, err := decodeExpression(node["target"])
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		op, _ := node["operator"].(string)
		if op == "" {
			op = "="
		}
		return ast.AssignOp(target, op, value), nil
	case ast.NodeDelStatement:
		name, _ := node["name"].(string)
		return ast.Del(name), nil

	case ast.NodeIfStatement:
		cond, err := decodeExpression(node["condition"])
		if err != nil {
			return nil, err
		}
		then, err := decodeStatements(node["then"])
		if err != nil {
			return nil, err
		}
		stmt := ast.If(cond, then...)
		elifsRaw, _ := node["elifs"].([]any)
		for _, raw := range elifsRaw {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("astcodec: invalid elif clause %T", raw)
			}
			clauseCond, err := decodeExpression(m["condition"])
			if err != nil {
				return nil, err
			}
			clauseBody, err := decodeStatements(m["body"])
			if err != nil {
				return nil, err
			}
			stmt.Elif(clauseCond, clauseBody...)
		}
		if node["else"] != nil {
			elseBody, err := decodeStatements(node["else"])
			if err != nil {
				return nil, err
			}
			stmt.WithElse(elseBody...)
		}
		return stmt, nil
	case ast.NodeWhileStatement:
		cond, err := decodeExpression(node["condition"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		return ast.While(cond, body...), nil
	case ast.NodeForStatement:
		name, _ := node["name"].(string)
		valueName, _ := node["valueName"].(string)
		iterable, err := decodeExpression(node["iterable"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		if valueName != "" {
			return ast.ForKV(name, valueName, iterable, body...), nil
		}
		return ast.ForIn(name, iterable, body...), nil

	case ast.NodeFunctionDecl:
		return decodeFunctionDeclaration(node)
	case ast.NodeTypeDecl:
		return decodeTypeDeclaration(node)
	case ast.NodeTraitDecl:
		name, _ := node["name"].(string)
		funcs, err := decodeFunctionDeclarations(node["functions"])
		if err != nil {
			return nil, err
		}
		return ast.Trait(name, funcs...), nil
	case ast.NodeImplBlock:
		return decodeImplBlock(node)

	case ast.NodeTryStatement:
		body, err := decodeStatements(node["body"])
		if err != nil {
			return nil, err
		}
		catchesRaw, _ := node["catches"].([]any)
		catches := make([]*ast.CatchClause, 0, len(catchesRaw))
		for _, raw := range catchesRaw {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("astcodec: invalid catch clause %T", raw)
			}
			varName, _ := m["var"].(string)
			typeName, _ := m["typeName"].(string)
			clauseBody, err := decodeStatements(m["body"])
			if err != nil {
				return nil, err
			}
			catches = append(catches, ast.Catch(varName, typeName, clauseBody...))
		}
		stmt := ast.Try(body, catches...)
		if node["ensure"] != nil {
			ensure, err := decodeStatements(node["ensure"])
			if err != nil {
				return nil, err
			}
			stmt.WithEnsure(ensure...)
		}
		return stmt, nil
	case ast.NodeRaiseStatement:
		if node["value"] == nil {
			return ast.Raise(nil), nil
		}
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.Raise(value), nil
	case ast.NodeReturnStatement:
		if node["value"] == nil {
			return ast.Ret(nil), nil
		}
		value, err := decodeExpression(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.Ret(value), nil
	case ast.NodeBreakStatement:
		return ast.Brk(), nil
	case ast.NodeContinueStatement:
		return ast.Cont(), nil
	case ast.NodeUseStatement:
		path, _ := node["path"].(string)
		alias, _ := node["alias"].(string)
		return ast.Use(path, alias), nil

	default:
		return nil, fmt.Errorf("astcodec: unknown node type %q", typ)
	}
}

func decodeFunctionDeclaration(node map[string]any) (*ast.FunctionDeclaration, error) {
	name, _ := node["name"].(string)
	params, err := decodeParameters(node["params"])
	if err != nil {
		return nil, err
	}
	body, err := decodeStatements(node["body"])
	if err != nil {
		return nil, err
	}
	fn := ast.Fun(name, params, body...)
	fn.Static, _ = node["static"].(bool)
	fn.Private, _ = node["private"].(bool)
	decorators, err := decodeExpressions(node["decorators"])
	if err != nil {
		return nil, err
	}
	fn.Decorators = decorators
	return fn, nil
}

func decodeTypeDeclaration(node map[string]any) (*ast.TypeDeclaration, error) {
	name, _ := node["name"].(string)
	fieldsRaw, _ := node["fields"].([]any)
	fields := make([]*ast.FieldDeclaration, 0, len(fieldsRaw))
	for _, raw := range fieldsRaw {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("astcodec: invalid field declaration %T", raw)
		}
		fieldName, _ := m["name"].(string)
		typeName, _ := m["typeName"].(string)
		field := ast.Field(fieldName, typeName)
		if optional, _ := m["optional"].(bool); optional {
			field.Opt()
		}
		if public, _ := m["public"].(bool); public {
			field.Pub()
		}
		if m["default"] != nil {
			def, err := decodeExpression(m["default"])
			if err != nil {
				return nil, err
			}
			field.WithDefault(def)
		}
		fields = append(fields, field)
	}
	funcs, err := decodeFunctionDeclarations(node["functions"])
	if err != nil {
		return nil, err
	}
	decl := ast.TypeDecl(name, fields, funcs...)
	implsRaw, _ := node["impls"].([]any)
	for _, raw := range implsRaw {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("astcodec: invalid impl block %T", raw)
		}
		impl, err := decodeImplBlock(m)
		if err != nil {
			return nil, err
		}
		decl.WithImpl(impl)
	}
	return decl, nil
}

func decodeImplBlock(node map[string]any) (*ast.ImplBlock, error) {
	traitName, _ := node["traitName"].(string)
	targetType, _ := node["targetType"].(string)
	funcs, err := decodeFunctionDeclarations(node["functions"])
	if err != nil {
		return nil, err
	}
	if targetType != "" {
		return ast.ImplFor(traitName, targetType, funcs...), nil
	}
	return ast.Impl(traitName, funcs...), nil
}

func decodeFunctionDeclarations(raw any) ([]*ast.FunctionDeclaration, error) {
	items, _ := raw.([]any)
	out := make([]*ast.FunctionDeclaration, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("astcodec: invalid function declaration %T", item)
		}
		fn, err := decodeFunctionDeclaration(m)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func decodeParameters(raw any) ([]*ast.Parameter, error) {
	items, _ := raw.([]any)
	out := make([]*ast.Parameter, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("astcodec: invalid parameter %T", item)
		}
		name, _ := m["name"].(string)
		param := ast.Param(name)
		param.TypeName, _ = m["typeName"].(string)
		param.Variadic, _ = m["variadic"].(bool)
		param.Keyword, _ = m["keyword"].(bool)
		if m["default"] != nil {
			def, err := decodeExpression(m["default"])
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		out = append(out, param)
	}
	return out, nil
}

func decodeStatements(raw any) ([]ast.Statement, error) {
	items, _ := raw.([]any)
	out := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("astcodec: invalid statement %T", item)
		}
		node, err := decodeNode(m)
		if err != nil {
			return nil, err
		}
		stmt, ok := node.(ast.Statement)
		if !ok {
			return nil, fmt.Errorf("astcodec: %s is not a statement", node.NodeType())
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeExpressions(raw any) ([]ast.Expression, error) {
	items, _ := raw.([]any)
	out := make([]ast.Expression, 0, len(items))
	for _, item := range items {
		expr, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeExpression(raw any) (ast.Expression, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("astcodec: invalid expression %T", raw)
	}
	node, err := decodeNode(m)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("astcodec: %s is not an expression", node.NodeType())
	}
	return expr, nil
}

// asInt64 accepts the numeric encodings both decoders produce: json numbers
// arrive as float64, yaml integers as int.
func asInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func asFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected float, got %T", raw)
	}
}

// asDigits accepts textual numeric payloads, tolerating decoders that parse
// them as numbers.
func asDigits(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%g", v), nil
	default:
		return "", fmt.Errorf("expected digits, got %T", raw)
	}
}
