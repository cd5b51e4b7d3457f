package handlers

import (
	"net/http"
	"time"

	middleware "github.com/agentdouble/kpix/middlewares"
	"github.com/agentdouble/kpix/models"
	"github.com/agentdouble/kpix/utils"
)

const requestTimeout = 10 * time.Second

// principal returns the authenticated caller, answering 401 when the route was
// mounted without JWTMiddleware.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		utils.HandleMessageResponse(w, "authentication required", http.StatusUnauthorized)
	}
	return p, ok
}
