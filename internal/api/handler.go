package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db     *sqlx.DB
	secret string
	log    *zap.Logger
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, secret: secret, log: log}
}

// Router wires up the HTTP API.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/reset-password/request", h.requestPasswordReset)
		r.Post("/reset-password", h.resetPassword)

		r.Group(func(pr chi.Router) {
			pr.Use(h.authMiddleware)

			pr.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.listAccounts)
				r.Post("/", h.createAccount)
				r.Put("/{id}", h.updateAccount)
				r.Delete("/{id}", h.deleteAccount)
			})

			pr.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.createProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})

			pr.Route("/transporters", func(r chi.Router) {
				r.Get("/", h.listTransporters)
				r.Post("/", h.createTransporter)
				r.Put("/{id}", h.updateTransporter)
				r.Delete("/{id}", h.deleteTransporter)
			})

			pr.Route("/sales", func(r chi.Router) {
				r.Get("/", h.listSales)
				r.Post("/", h.createSale)
				r.Put("/{invoiceNo}", h.updateSale)
				r.Delete("/{invoiceNo}", h.deleteSale)
			})

			pr.Route("/purchases", func(r chi.Router) {
				r.Get("/", h.listPurchases)
				r.Post("/", h.createPurchase)
				r.Put("/{invoiceNo}", h.updatePurchase)
				r.Delete("/{invoiceNo}", h.deletePurchase)
			})

			pr.Route("/customer-rates", func(r chi.Router) {
				r.Get("/", h.listCustomerRates)
				r.Put("/", h.upsertCustomerRate)
				r.Post("/batch", h.batchUpsertCustomerRates)
			})

			pr.Route("/stock", func(r chi.Router) {
				r.Get("/summary", h.stockSummary)
				r.Get("/movements", h.stockMovements)
				r.Get("/customers", h.customerStock)
			})

			pr.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", h.dashboardSummary)
				r.Get("/top-customers", h.topCustomers)
				r.Get("/product-sales", h.productSales)
				r.Get("/consumption", h.consumptionReport)
			})

			pr.Get("/next-invoice-number", h.nextInvoiceNumber)

			pr.Route("/financial-years", func(r chi.Router) {
				r.Get("/", h.listFinancialYears)
				r.Post("/", h.createFinancialYear)
				r.Put("/{id}/current", h.setCurrentFinancialYear)
			})
			pr.Post("/process-year-end", h.processYearEnd)

			pr.Get("/backup", h.downloadBackup)
			pr.Post("/restore", h.restoreBackup)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// Authentication helpers

type authClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, role string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	role := r.Context().Value(ctxRole)
	if role == nil {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	current := role.(string)
	for _, allowedRole := range allowed {
		if current == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
