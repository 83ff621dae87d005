package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/internal/api/store"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *auth.TokenService
	store        store.Store
	cache        *redis.Client
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	UserService    *service.UserService
	PizzaService   *service.PizzaService
	CatalogService *service.CatalogService
	TicketService  *service.StreamTicketService
}

func NewRouter(
	tokens *auth.TokenService,
	st store.Store,
	cache *redis.Client,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		store:        st,
		cache:        cache,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerCatalog()
	r.registerPizzas()
	r.registerStream()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with the auth gate and a per-subject rate limit.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		AuthMiddleware(r.tokens),
		httpx.RateLimitBySubject(limit),
	)
}

func (r *Router) registerUsers() {
	// POST /user/create - strict rate limit by IP (public signup endpoint)
	createHandler := &UserCreateHandler{UserService: r.UserService}
	r.Mux.Handle("POST /api/v1/user/create",
		httpx.Chain(createHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /user/login - strict rate limit by IP (authentication attempts)
	loginHandler := &UserLoginHandler{UserService: r.UserService}
	r.Mux.Handle("POST /api/v1/user/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logoutHandler := &UserLogoutHandler{UserService: r.UserService}
	r.Mux.Handle("POST /api/v1/user/logout", r.secured(logoutHandler, httpx.LenientLimit))

	infoHandler := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /api/v1/user/my_info", r.secured(infoHandler, httpx.LenientLimit))
}

func (r *Router) registerCatalog() {
	ingredientHandler := &IngredientListHandler{CatalogService: r.CatalogService}
	r.Mux.Handle("GET /api/v1/ingredient/list", r.secured(ingredientHandler, httpx.LenientLimit))

	tagHandler := &TagListHandler{CatalogService: r.CatalogService}
	r.Mux.Handle("GET /api/v1/tag/list", r.secured(tagHandler, httpx.LenientLimit))

	// The shop directory is public: clients need it before they can log in.
	shopHandler := &ShopListHandler{CatalogService: r.CatalogService}
	r.Mux.Handle("GET /api/v1/store/list",
		httpx.Chain(shopHandler,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerPizzas() {
	createHandler := &PizzaCreateHandler{PizzaService: r.PizzaService}
	r.Mux.Handle("POST /api/v1/pizza/create", r.secured(createHandler, httpx.LenientLimit))

	listHandler := &PizzaListHandler{PizzaService: r.PizzaService}
	r.Mux.Handle("GET /api/v1/pizza/list", r.secured(listHandler, httpx.LenientLimit))
}

func (r *Router) registerStream() {
	ticketHandler := &StreamTicketHandler{TicketService: r.TicketService}
	r.Mux.Handle("GET /api/v1/ws/ticket", r.secured(ticketHandler, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
