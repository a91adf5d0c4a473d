package server

type Option func(s *Server)

// WithPort sets the port the server listens on. The default port is 4040.
func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithCORS enables Cross-Origin Resource Sharing on every route, which
// browser-based inspectors need when served from another origin.
func WithCORS() Option {
	return func(s *Server) {
		s.withCORS = true
	}
}
