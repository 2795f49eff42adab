package httpapi

import "net/http"

// Routes wires every endpoint of the public contract. Bearer-protected
// routes go through requireAuth; everything passes the CORS and request
// logging middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.healthHandler)

	mux.HandleFunc("POST /api/auth/register", s.registerHandler)
	mux.HandleFunc("POST /api/auth/login", s.loginHandler)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.meHandler))
	mux.HandleFunc("POST /api/auth/forgot-password", s.forgotPasswordHandler)
	mux.HandleFunc("PUT /api/auth/reset-password/{token}", s.resetPasswordHandler)

	mux.HandleFunc("GET /api/todos", s.requireAuth(s.listTodosHandler))
	mux.HandleFunc("POST /api/todos", s.requireAuth(s.createTodoHandler))
	mux.HandleFunc("GET /api/todos/{id}", s.requireAuth(s.getTodoHandler))
	mux.HandleFunc("PUT /api/todos/{id}", s.requireAuth(s.updateTodoHandler))
	mux.HandleFunc("DELETE /api/todos/{id}", s.requireAuth(s.deleteTodoHandler))
	mux.HandleFunc("PATCH /api/todos/{id}/toggle", s.requireAuth(s.toggleTodoHandler))

	mux.HandleFunc("POST /api/todos/{id}/subtasks", s.requireAuth(s.addSubtaskHandler))
	mux.HandleFunc("PATCH /api/todos/{id}/subtasks/bulk", s.requireAuth(s.bulkSubtasksHandler))
	mux.HandleFunc("PATCH /api/todos/{id}/subtasks/{sid}/toggle", s.requireAuth(s.toggleSubtaskHandler))
	mux.HandleFunc("PUT /api/todos/{id}/subtasks/{sid}", s.requireAuth(s.renameSubtaskHandler))
	mux.HandleFunc("DELETE /api/todos/{id}/subtasks/{sid}", s.requireAuth(s.removeSubtaskHandler))

	return s.logRequests(s.enableCORS(mux))
}
