// Package errors 定义生成流水线的错误分类：解析、渲染与资源写入。
// 面向用户的文本只在最外层（CLI）生成，这里只保存分类与内部信息。
package errors

import stderrors "errors"

// Kind 是机器可读的错误分类。
type Kind string

const (
	KindUnknown Kind = "UNKNOWN"

	// KindParse 输入格式错误、缺少必填字段或规则文本冲突。
	KindParse Kind = "PARSE_ERROR"
	// KindUnsupportedSchema 根结构不属于任何受支持的 roster schema。
	KindUnsupportedSchema Kind = "UNSUPPORTED_SCHEMA"
	// KindRender 测量、绘制或字体资源失败。
	KindRender Kind = "RENDER_ERROR"
	// KindResource 输出文件写入失败。
	KindResource Kind = "RESOURCE_ERROR"
)

// IsParse reports whether the kind belongs to the parse family.
func (k Kind) IsParse() bool {
	return k == KindParse || k == KindUnsupportedSchema
}

// Error 携带分类、内部信息、模板元数据以及底层原因。
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithMetadata creates an error carrying key/value context (unit name, rule id...).
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an *Error of kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Parse 快捷构造解析错误。
func Parse(message string, metadata map[string]string) *Error {
	return WithMetadata(KindParse, message, metadata)
}

// Render 快捷包装渲染错误。
func Render(message string, cause error) *Error {
	return Wrap(KindRender, message, cause)
}

// Resource 快捷包装资源写入错误。
func Resource(message string, cause error) *Error {
	return Wrap(KindResource, message, cause)
}
