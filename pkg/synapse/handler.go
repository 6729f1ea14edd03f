package synapse

// Handler is implemented by every generated route handler
type Handler interface {
	// Execute runs the rewritten method body against req
	Execute(req *HttpRequest) IntoResponse

	// GetToken returns the handler's identifying name
	GetToken() string

	// GetPath returns the controller prefix joined with the route path
	GetPath() string

	GetMethod() HttpMethod
}

// Manager is implemented by the generated per-controller manager. It
// builds the controller's handlers with their providers bound from a
// Container.
type Manager interface {
	GetToken() string

	// GetDependencies lists the service type names the handlers draw
	// providers from, sorted and without duplicates
	GetDependencies() []string

	GetHandlers(container *Container) ([]Handler, error)
}
