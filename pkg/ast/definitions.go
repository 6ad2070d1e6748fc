package ast

//-----------------------------------------------------------------------------
// Statements and declarations
//-----------------------------------------------------------------------------

// LetStatement declares a binding in the innermost scope frame, shadowing any
// outer binding of the same name.
type LetStatement struct {
	nodeImpl
	statementMarker
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

// AssignStatement mutates an existing binding, struct field, or collection
// slot. Operator is "=", "+=", "-=", "*=" or "/=".
type AssignStatement struct {
	nodeImpl
	statementMarker
	Target   Expression `json:"target"`
	Operator string     `json:"operator"`
	Value    Expression `json:"value"`
}

// DelStatement removes a binding from the current frame only.
type DelStatement struct {
	nodeImpl
	statementMarker
	Name string `json:"name"`
}

type ElifClause struct {
	nodeImpl
	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

type IfStatement struct {
	nodeImpl
	statementMarker
	Condition Expression    `json:"condition"`
	Then      []Statement   `json:"then"`
	Elifs     []*ElifClause `json:"elifs"`
	Else      []Statement   `json:"else"`
}

type WhileStatement struct {
	nodeImpl
	statementMarker
	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

// ForStatement iterates an array, dict (keys, or key/value when ValueName is
// set), string, or bytes value.
type ForStatement struct {
	nodeImpl
	statementMarker
	Name      string      `json:"name"`
	ValueName string      `json:"valueName,omitempty"`
	Iterable  Expression  `json:"iterable"`
	Body      []Statement `json:"body"`
}

// Parameter order in a declaration is fixed: required, defaulted, at most one
// variadic-positional (Variadic), at most one variadic-keyword (Keyword).
type Parameter struct {
	nodeImpl
	Name     string     `json:"name"`
	TypeName string     `json:"typeName,omitempty"`
	Default  Expression `json:"default,omitempty"`
	Variadic bool       `json:"variadic,omitempty"`
	Keyword  bool       `json:"keyword,omitempty"`
}

// FunctionDeclaration is a named `fun`. Inside a type declaration Static
// marks a type-level method and Private hides it from outside callers.
type FunctionDeclaration struct {
	nodeImpl
	statementMarker
	Name       string       `json:"name"`
	Params     []*Parameter `json:"params"`
	Body       []Statement  `json:"body"`
	Decorators []Expression `json:"decorators,omitempty"`
	Static     bool         `json:"static,omitempty"`
	Private    bool         `json:"private,omitempty"`
}

// FieldDeclaration is one field of a type declaration. TypeName "" means Any.
// Optional and TypeName are independent axes: nil is legal for an optional
// field whatever its declared type.
type FieldDeclaration struct {
	nodeImpl
	Name     string     `json:"name"`
	TypeName string     `json:"typeName,omitempty"`
	Optional bool       `json:"optional,omitempty"`
	Public   bool       `json:"public,omitempty"`
	Default  Expression `json:"default,omitempty"`
}

// ImplBlock provides trait methods, either inside a type declaration or as a
// standalone `impl Trait for Type` statement (TargetType set).
type ImplBlock struct {
	nodeImpl
	statementMarker
	TraitName  string                 `json:"traitName"`
	TargetType string                 `json:"targetType,omitempty"`
	Functions  []*FunctionDeclaration `json:"functions"`
}

type TypeDeclaration struct {
	nodeImpl
	statementMarker
	Name      string                 `json:"name"`
	Fields    []*FieldDeclaration    `json:"fields"`
	Functions []*FunctionDeclaration `json:"functions"`
	Impls     []*ImplBlock           `json:"impls,omitempty"`
}

// TraitDeclaration lists required method signatures; a signature with a body
// is a default implementation types may inherit.
type TraitDeclaration struct {
	nodeImpl
	statementMarker
	Name      string                 `json:"name"`
	Functions []*FunctionDeclaration `json:"functions"`
}

// CatchClause matches when TypeName is empty (bare catch) or the in-flight
// exception's type equals or inherits from TypeName.
type CatchClause struct {
	nodeImpl
	Var      string      `json:"var"`
	TypeName string      `json:"typeName,omitempty"`
	Body     []Statement `json:"body"`
}

type TryStatement struct {
	nodeImpl
	statementMarker
	Body    []Statement    `json:"body"`
	Catches []*CatchClause `json:"catches"`
	Ensure  []Statement    `json:"ensure,omitempty"`
}

type RaiseStatement struct {
	nodeImpl
	statementMarker
	Value Expression `json:"value,omitempty"`
}

type ReturnStatement struct {
	nodeImpl
	statementMarker
	Value Expression `json:"value,omitempty"`
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

// UseStatement imports a module namespace under Alias (or the path's last
// segment when Alias is empty).
type UseStatement struct {
	nodeImpl
	statementMarker
	Path  string `json:"path"`
	Alias string `json:"alias,omitempty"`
}

type Module struct {
	nodeImpl
	Body []Statement `json:"body"`
}

//-----------------------------------------------------------------------------
// Builder helpers (used heavily by tests)
//-----------------------------------------------------------------------------

func ID(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

func Nil() *NilLiteral { return &NilLiteral{nodeImpl: newNodeImpl(NodeNilLiteral)} }

func Bool(v bool) *BoolLiteral {
	return &BoolLiteral{nodeImpl: newNodeImpl(NodeBoolLiteral), Value: v}
}

func Int(v int64) *IntLiteral {
	return &IntLiteral{nodeImpl: newNodeImpl(NodeIntLiteral), Value: v}
}

func BigInt(digits string) *BigIntLiteral {
	return &BigIntLiteral{nodeImpl: newNodeImpl(NodeBigIntLiteral), Value: digits}
}

func Float(v float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: v}
}

func Dec(text string) *DecimalLiteral {
	return &DecimalLiteral{nodeImpl: newNodeImpl(NodeDecimalLiteral), Value: text}
}

func Str(v string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: v}
}

func Bytes(v []byte) *BytesLiteral {
	return &BytesLiteral{nodeImpl: newNodeImpl(NodeBytesLiteral), Value: v}
}

func Arr(elements ...Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

func Entry(key Expression, value Expression) DictEntry {
	return DictEntry{Key: key, Value: value}
}

func Dict(entries ...DictEntry) *DictLiteral {
	return &DictLiteral{nodeImpl: newNodeImpl(NodeDictLiteral), Entries: entries}
}

func Un(op string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: op, Operand: operand}
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: op, Left: left, Right: right}
}

func Named(name string, value Expression) *NamedArgument {
	return &NamedArgument{nodeImpl: newNodeImpl(NodeNamedArgument), Name: name, Value: value}
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Args: args}
}

func CallKw(callee Expression, args []Expression, named ...*NamedArgument) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Args: args, Named: named}
}

func Member(object Expression, member string) *MemberAccess {
	return &MemberAccess{nodeImpl: newNodeImpl(NodeMemberAccess), Object: object, Member: member}
}

func Index(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

func Lam(params []*Parameter, body ...Statement) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Params: params, Body: body}
}

func Let(name string, value Expression) *LetStatement {
	return &LetStatement{nodeImpl: newNodeImpl(NodeLetStatement), Name: name, Value: value}
}

func Assign(target Expression, value Expression) *AssignStatement {
	return &AssignStatement{nodeImpl: newNodeImpl(NodeAssignStatement), Target: target, Operator: "=", Value: value}
}

func AssignOp(target Expression, op string, value Expression) *AssignStatement {
	return &AssignStatement{nodeImpl: newNodeImpl(NodeAssignStatement), Target: target, Operator: op, Value: value}
}

func Del(name string) *DelStatement {
	return &DelStatement{nodeImpl: newNodeImpl(NodeDelStatement), Name: name}
}

func If(cond Expression, then ...Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: cond, Then: then}
}

func (s *IfStatement) Elif(cond Expression, body ...Statement) *IfStatement {
	s.Elifs = append(s.Elifs, &ElifClause{nodeImpl: newNodeImpl(NodeElifClause), Condition: cond, Body: body})
	return s
}

func (s *IfStatement) WithElse(body ...Statement) *IfStatement {
	s.Else = body
	return s
}

func While(cond Expression, body ...Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: cond, Body: body}
}

func ForIn(name string, iterable Expression, body ...Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Name: name, Iterable: iterable, Body: body}
}

func ForKV(keyName, valueName string, iterable Expression, body ...Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Name: keyName, ValueName: valueName, Iterable: iterable, Body: body}
}

func Param(name string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name}
}

func TypedParam(name, typeName string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, TypeName: typeName}
}

func DefParam(name string, def Expression) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Default: def}
}

func RestParam(name string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Variadic: true}
}

func KwParam(name string) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Keyword: true}
}

func Fun(name string, params []*Parameter, body ...Statement) *FunctionDeclaration {
	return &FunctionDeclaration{nodeImpl: newNodeImpl(NodeFunctionDecl), Name: name, Params: params, Body: body}
}

func StaticFun(name string, params []*Parameter, body ...Statement) *FunctionDeclaration {
	fn := Fun(name, params, body...)
	fn.Static = true
	return fn
}

func PrivateFun(name string, params []*Parameter, body ...Statement) *FunctionDeclaration {
	fn := Fun(name, params, body...)
	fn.Private = true
	return fn
}

func Decorated(fn *FunctionDeclaration, decorators ...Expression) *FunctionDeclaration {
	fn.Decorators = decorators
	return fn
}

func Field(name, typeName string) *FieldDeclaration {
	return &FieldDeclaration{nodeImpl: newNodeImpl(NodeFieldDecl), Name: name, TypeName: typeName}
}

func OptField(name, typeName string) *FieldDeclaration {
	f := Field(name, typeName)
	f.Optional = true
	return f
}

func PubField(name, typeName string) *FieldDeclaration {
	f := Field(name, typeName)
	f.Public = true
	return f
}

func (f *FieldDeclaration) WithDefault(def Expression) *FieldDeclaration {
	f.Default = def
	return f
}

func (f *FieldDeclaration) Opt() *FieldDeclaration {
	f.Optional = true
	return f
}

func (f *FieldDeclaration) Pub() *FieldDeclaration {
	f.Public = true
	return f
}

func TypeDecl(name string, fields []*FieldDeclaration, funcs ...*FunctionDeclaration) *TypeDeclaration {
	return &TypeDeclaration{nodeImpl: newNodeImpl(NodeTypeDecl), Name: name, Fields: fields, Functions: funcs}
}

func (t *TypeDeclaration) WithImpl(impl *ImplBlock) *TypeDeclaration {
	t.Impls = append(t.Impls, impl)
	return t
}

func Trait(name string, funcs ...*FunctionDeclaration) *TraitDeclaration {
	return &TraitDeclaration{nodeImpl: newNodeImpl(NodeTraitDecl), Name: name, Functions: funcs}
}

func Impl(traitName string, funcs ...*FunctionDeclaration) *ImplBlock {
	return &ImplBlock{nodeImpl: newNodeImpl(NodeImplBlock), TraitName: traitName, Functions: funcs}
}

func ImplFor(traitName, targetType string, funcs ...*FunctionDeclaration) *ImplBlock {
	return &ImplBlock{nodeImpl: newNodeImpl(NodeImplBlock), TraitName: traitName, TargetType: targetType, Functions: funcs}
}

func Catch(varName, typeName string, body ...Statement) *CatchClause {
	return &CatchClause{nodeImpl: newNodeImpl(NodeCatchClause), Var: varName, TypeName: typeName, Body: body}
}

func Try(body []Statement, catches ...*CatchClause) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTryStatement), Body: body, Catches: catches}
}

func (t *TryStatement) WithEnsure(body ...Statement) *TryStatement {
	t.Ensure = body
	return t
}

func Raise(value Expression) *RaiseStatement {
	return &RaiseStatement{nodeImpl: newNodeImpl(NodeRaiseStatement), Value: value}
}

func Ret(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Value: value}
}

func Brk() *BreakStatement { return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)} }

func Cont() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

func Use(path, alias string) *UseStatement {
	return &UseStatement{nodeImpl: newNodeImpl(NodeUseStatement), Path: path, Alias: alias}
}

func Mod(body ...Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}
