package ast

// NodeType identifies the kind of a syntax tree node. The values double as
// the "type" discriminator in AST documents emitted by the external parser.
type NodeType string

const (
	NodeIdentifier       NodeType = "Identifier"
	NodeNilLiteral       NodeType = "NilLiteral"
	NodeBoolLiteral      NodeType = "BoolLiteral"
	NodeIntLiteral       NodeType = "IntLiteral"
	NodeBigIntLiteral    NodeType = "BigIntLiteral"
	NodeFloatLiteral     NodeType = "FloatLiteral"
	NodeDecimalLiteral   NodeType = "DecimalLiteral"
	NodeStringLiteral    NodeType = "StringLiteral"
	NodeBytesLiteral     NodeType = "BytesLiteral"
	NodeArrayLiteral     NodeType = "ArrayLiteral"
	NodeDictLiteral      NodeType = "DictLiteral"
	NodeUnaryExpression  NodeType = "UnaryExpression"
	NodeBinaryExpression NodeType = "BinaryExpression"
	NodeCallExpression   NodeType = "CallExpression"
	NodeNamedArgument    NodeType = "NamedArgument"
	NodeMemberAccess     NodeType = "MemberAccess"
	NodeIndexExpression  NodeType = "IndexExpression"
	NodeFunctionLiteral  NodeType = "FunctionLiteral"

	NodeLetStatement      NodeType = "LetStatement"
	NodeAssignStatement   NodeType = "AssignStatement"
	NodeDelStatement      NodeType = "DelStatement"
	NodeIfStatement       NodeType = "IfStatement"
	NodeElifClause        NodeType = "ElifClause"
	NodeWhileStatement    NodeType = "WhileStatement"
	NodeForStatement      NodeType = "ForStatement"
	NodeFunctionDecl      NodeType = "FunctionDeclaration"
	NodeParameter         NodeType = "Parameter"
	NodeTypeDecl          NodeType = "TypeDeclaration"
	NodeFieldDecl         NodeType = "FieldDeclaration"
	NodeTraitDecl         NodeType = "TraitDeclaration"
	NodeImplBlock         NodeType = "ImplBlock"
	NodeTryStatement      NodeType = "TryStatement"
	NodeCatchClause       NodeType = "CatchClause"
	NodeRaiseStatement    NodeType = "RaiseStatement"
	NodeReturnStatement   NodeType = "ReturnStatement"
	NodeBreakStatement    NodeType = "BreakStatement"
	NodeContinueStatement NodeType = "ContinueStatement"
	NodeUseStatement      NodeType = "UseStatement"
	NodeModule            NodeType = "Module"
)

// Node is the shared behaviour of every syntax tree node.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type" yaml:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Expression nodes may appear anywhere a value is produced. Every expression
// is also a statement (an expression statement).
type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}
func (expressionMarker) statementNode()  {}

// Statement nodes form the bodies of modules, blocks and clauses.
type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type Identifier struct {
	nodeImpl
	expressionMarker
	Name string `json:"name"`
}

type NilLiteral struct {
	nodeImpl
	expressionMarker
}

type BoolLiteral struct {
	nodeImpl
	expressionMarker
	Value bool `json:"value"`
}

type IntLiteral struct {
	nodeImpl
	expressionMarker
	Value int64 `json:"value"`
}

// BigIntLiteral carries its digits as text; magnitude is unbounded.
type BigIntLiteral struct {
	nodeImpl
	expressionMarker
	Value string `json:"value"`
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker
	Value float64 `json:"value"`
}

// DecimalLiteral carries the exact textual form so no precision is lost
// between the parser and the evaluator.
type DecimalLiteral struct {
	nodeImpl
	expressionMarker
	Value string `json:"value"`
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	Value string `json:"value"`
}

type BytesLiteral struct {
	nodeImpl
	expressionMarker
	Value []byte `json:"value"`
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	Elements []Expression `json:"elements"`
}

// DictEntry is one key/value pair of a dict literal. Keys evaluate to
// strings; insertion order is preserved.
type DictEntry struct {
	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

type DictLiteral struct {
	nodeImpl
	expressionMarker
	Entries []DictEntry `json:"entries"`
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

// NamedArgument is a `name: value` argument at a call site.
type NamedArgument struct {
	nodeImpl
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	Callee Expression       `json:"callee"`
	Args   []Expression     `json:"args"`
	Named  []*NamedArgument `json:"named"`
}

type MemberAccess struct {
	nodeImpl
	expressionMarker
	Object Expression `json:"object"`
	Member string     `json:"member"`
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

// FunctionLiteral is an anonymous function. It shares the Parameter model
// with named function declarations so both bind call arguments identically.
type FunctionLiteral struct {
	nodeImpl
	expressionMarker
	Params []*Parameter `json:"params"`
	Body   []Statement  `json:"body"`
}
