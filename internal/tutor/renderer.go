package tutor

// Role tags what a rendered line is.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
	RoleStatus    Role = "status"
)

// Renderer displays text to the learner. Its return value, if any, is not
// consumed.
type Renderer interface {
	Render(role Role, text string)
}

// Loader is implemented by renderers that can show a loading indicator and
// take it down again. The returned stop func must be safe to call once.
type Loader interface {
	StartLoading(text string) (stop func())
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(role Role, text string)

func (f RendererFunc) Render(role Role, text string) { f(role, text) }
