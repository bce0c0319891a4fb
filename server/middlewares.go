package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Daskott/vitals/colors"
	"github.com/Daskott/vitals/server/auth"
	"github.com/Daskott/vitals/server/models"
	"github.com/pkg/errors"
)

type RequestContextKey string

type DecodedJWT struct {
	Claims *auth.VitalsTokenClaims
	Err    error
}

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         http.StatusOK,
		}

		defer func() {
			s.logg.Infof("%v %v %v %v",
				r.Method,
				r.RequestURI,
				colors.Status(responseWriter.Status),
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

// corsMiddleware answers preflight requests. Allowed methods are set by mux.CORSMethodMiddleware.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx := context.WithValue(r.Context(), RequestContextKey("decodedJWT"), s.decodeAndVerifyAuthHeader(r.Header.Get("Authorization")))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// protectedRouteMiddleware only lets through requests carrying a valid token
// for a user that still exists. The user is added to the request context.
func (s *Server) protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
		if !ok {
			decodedJWT = s.decodeAndVerifyAuthHeader(r.Header.Get("Authorization"))
		}

		if errors.Is(decodedJWT.Err, auth.ErrExpiredToken) {
			s.writeResponse(w, ResponsePayload{Message: "Token has expired"}, http.StatusUnauthorized)
			return
		}

		if decodedJWT.Err != nil {
			s.writeResponse(w, ResponsePayload{Message: "Invalid token"}, http.StatusUnauthorized)
			return
		}

		user, err := s.users.FindByEmail(decodedJWT.Claims.Email())
		if errors.Is(err, models.ErrNotFound) {
			s.writeResponse(w, ResponsePayload{Message: "User not found"}, http.StatusNotFound)
			return
		}
		if err != nil {
			s.writeInternalError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), RequestContextKey("currentUser"), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (s *Server) decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	// the auth scheme is case-insensitive
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeaderValue), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return DecodedJWT{Err: auth.ErrInvalidToken}
	}

	tokenClaims, err := s.sessions.Verify(token)
	if err != nil {
		return DecodedJWT{Err: err}
	}

	return DecodedJWT{Claims: tokenClaims}
}

func (s *Server) allowedOrigin(requestOrigin string) string {
	for _, origin := range s.allowedOrigins {
		if origin == "*" {
			return "*"
		}
		if requestOrigin != "" && origin == requestOrigin {
			return origin
		}
	}
	return ""
}

// currentUser returns the user bound to r by protectedRouteMiddleware
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(RequestContextKey("currentUser")).(*models.User)
	return user
}
