package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Tool method names accepted by /mcp/run.
const (
	MethodGenerateItineraryRoute = "generate_itinerary_route"
	MethodGenerateShareableLink  = "generate_shareable_link"
	MethodDirections             = "directions"
	MethodGeocode                = "geocode"
	MethodReverseGeocode         = "reverse_geocode"
	MethodDistanceMatrix         = "distance_matrix"
)

// ItineraryService is the behaviour the handler needs from Service.
type ItineraryService interface {
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*ItineraryRoute, error)
	BuildShareableLink(ctx context.Context, req *ShareableLinkRequest) (*ShareableLink, error)
	Directions(ctx context.Context, q *DirectionsQuery) (*Directions, error)
	Geocode(ctx context.Context, q *GeocodeQuery) (*GeocodeResult, error)
	ReverseGeocode(ctx context.Context, q *ReverseGeocodeQuery) (*GeocodeResult, error)
	DistanceMatrix(ctx context.Context, q *DistanceMatrixQuery) (*DistanceMatrixResult, error)
}

// Handler handles HTTP requests for itinerary synthesis
type Handler struct {
	service ItineraryService
}

// NewHandler creates a new itinerary handler
func NewHandler(service ItineraryService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the REST routes under rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	itineraries := rg.Group("/itineraries")
	{
		itineraries.POST("", h.CreateItinerary)
		itineraries.POST("/links", h.CreateShareableLink)
	}

	lookups := rg.Group("/maps")
	{
		lookups.POST("/directions", h.GetDirections)
		lookups.POST("/geocode", h.Geocode)
		lookups.POST("/reverse-geocode", h.ReverseGeocode)
		lookups.POST("/distance-matrix", h.DistanceMatrix)
	}
}

// RegisterToolRoutes registers the agent tool-call endpoint.
func (h *Handler) RegisterToolRoutes(r gin.IRoutes) {
	r.POST("/mcp/run", h.RunTool)
}

// CreateItinerary handles itinerary synthesis requests
// @Summary Synthesize a multi-stop itinerary route
// @Description Returns per-leg and total distance/duration with shareable Google Maps links
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body SynthesizeRequest true "Itinerary request"
// @Success 200 {object} common.Response{data=ItineraryRoute}
// @Failure 400 {object} common.Response
// @Router /api/v1/itineraries [post]
func (h *Handler) CreateItinerary(c *gin.Context) {
	var req SynthesizeRequest
	if !common.BindJSON(c, &req) {
		return
	}

	route, err := h.service.Synthesize(c.Request.Context(), &req)
	if common.HandleServiceError(c, toAppError(err), "failed to synthesize itinerary") {
		return
	}

	common.SuccessResponseWithMeta(c, route, &common.Meta{
		RequestID: common.RequestID(c),
		Degraded:  route.IsDegraded,
	})
}

// CreateShareableLink handles deep link requests
// @Summary Build a shareable Google Maps directions link
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body ShareableLinkRequest true "Link request"
// @Success 200 {object} common.Response{data=ShareableLink}
// @Failure 400 {object} common.Response
// @Router /api/v1/itineraries/links [post]
func (h *Handler) CreateShareableLink(c *gin.Context) {
	var req ShareableLinkRequest
	if !common.BindJSON(c, &req) {
		return
	}

	link, err := h.service.BuildShareableLink(c.Request.Context(), &req)
	if common.HandleServiceError(c, toAppError(err), "failed to build shareable link") {
		return
	}

	common.SuccessResponse(c, link)
}

// GetDirections handles single-route lookups
// @Summary Get turn-by-turn directions with a shareable link
// @Tags Maps
// @Accept json
// @Produce json
// @Param request body DirectionsQuery true "Directions query"
// @Success 200 {object} common.Response{data=Directions}
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/maps/directions [post]
func (h *Handler) GetDirections(c *gin.Context) {
	var q DirectionsQuery
	if !common.BindJSON(c, &q) {
		return
	}

	directions, err := h.service.Directions(c.Request.Context(), &q)
	if common.HandleServiceError(c, toAppError(err), "failed to get directions") {
		return
	}

	common.SuccessResponse(c, directions)
}

// Geocode handles address lookups
// @Summary Geocode an address
// @Tags Maps
// @Accept json
// @Produce json
// @Param request body GeocodeQuery true "Geocode query"
// @Success 200 {object} common.Response{data=GeocodeResult}
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/maps/geocode [post]
func (h *Handler) Geocode(c *gin.Context) {
	var q GeocodeQuery
	if !common.BindJSON(c, &q) {
		return
	}

	result, err := h.service.Geocode(c.Request.Context(), &q)
	if common.HandleServiceError(c, toAppError(err), "failed to geocode address") {
		return
	}

	common.SuccessResponse(c, result)
}

// ReverseGeocode handles coordinate lookups
// @Summary Reverse geocode a coordinate
// @Tags Maps
// @Accept json
// @Produce json
// @Param request body ReverseGeocodeQuery true "Reverse geocode query"
// @Success 200 {object} common.Response{data=GeocodeResult}
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/maps/reverse-geocode [post]
func (h *Handler) ReverseGeocode(c *gin.Context) {
	var q ReverseGeocodeQuery
	if !common.BindJSON(c, &q) {
		return
	}

	result, err := h.service.ReverseGeocode(c.Request.Context(), &q)
	if common.HandleServiceError(c, toAppError(err), "failed to reverse geocode") {
		return
	}

	common.SuccessResponse(c, result)
}

// DistanceMatrix handles origin/destination matrix lookups
// @Summary Estimate travel between many origins and destinations
// @Tags Maps
// @Accept json
// @Produce json
// @Param request body DistanceMatrixQuery true "Distance matrix query"
// @Success 200 {object} common.Response{data=DistanceMatrixResult}
// @Failure 400 {object} common.Response
// @Failure 503 {object} common.Response
// @Router /api/v1/maps/distance-matrix [post]
func (h *Handler) DistanceMatrix(c *gin.Context) {
	var q DistanceMatrixQuery
	if !common.BindJSON(c, &q) {
		return
	}

	matrix, err := h.service.DistanceMatrix(c.Request.Context(), &q)
	if common.HandleServiceError(c, toAppError(err), "failed to compute distance matrix") {
		return
	}

	common.SuccessResponse(c, matrix)
}

// ToolRequest is the agent tool-call envelope.
type ToolRequest struct {
	Method string          `json:"method" binding:"required"`
	Args   json.RawMessage `json:"args"`
}

// ToolResponse mirrors what agent tool wrappers expect: errors are plain
// strings and tool failures still answer 200.
type ToolResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// toolItineraryArgs accepts both the structured form and the shorter
// origin/destinations form used by agent wrappers.
type toolItineraryArgs struct {
	StartLocation string       `json:"start_location"`
	Origin        string       `json:"origin"`
	Experiences   []Experience `json:"experiences"`
	Destinations  []string     `json:"destinations"`
	Mode          string       `json:"mode"`
	Optimize      *bool        `json:"optimize"`
}

func (a toolItineraryArgs) request() *SynthesizeRequest {
	req := &SynthesizeRequest{
		StartLocation: a.StartLocation,
		Experiences:   a.Experiences,
		Mode:          a.Mode,
		Optimize:      a.Optimize,
	}
	if req.StartLocation == "" {
		req.StartLocation = a.Origin
	}
	if len(req.Experiences) == 0 {
		for _, d := range a.Destinations {
			req.Experiences = append(req.Experiences, Experience{Location: d})
		}
	}
	return req
}

// RunTool dispatches an agent tool call
// @Summary Run an itinerary tool method
// @Tags Tools
// @Accept json
// @Produce json
// @Param request body ToolRequest true "Tool call"
// @Success 200 {object} ToolResponse
// @Failure 400 {object} ToolResponse
// @Router /mcp/run [post]
func (h *Handler) RunTool(c *gin.Context) {
	var req ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ToolResponse{Error: "invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		data interface{}
		err  error
	)

	switch req.Method {
	case MethodGenerateItineraryRoute:
		var args toolItineraryArgs
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.Synthesize(ctx, args.request())
		}
	case MethodGenerateShareableLink:
		var args ShareableLinkRequest
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.BuildShareableLink(ctx, &args)
		}
	case MethodDirections:
		var args DirectionsQuery
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.Directions(ctx, &args)
		}
	case MethodGeocode:
		var args GeocodeQuery
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.Geocode(ctx, &args)
		}
	case MethodReverseGeocode:
		var args ReverseGeocodeQuery
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.ReverseGeocode(ctx, &args)
		}
	case MethodDistanceMatrix:
		var args DistanceMatrixQuery
		if err = decodeArgs(req.Args, &args); err == nil {
			data, err = h.service.DistanceMatrix(ctx, &args)
		}
	default:
		c.JSON(http.StatusOK, ToolResponse{Error: "Unknown method: " + req.Method})
		return
	}

	if err != nil {
		if !errors.Is(err, ErrInvalidRequest) {
			logger.ErrorContext(ctx, "tool call failed", zap.String("method", req.Method), zap.Error(err))
		}
		c.JSON(http.StatusOK, ToolResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ToolResponse{Success: true, Data: data})
}

func decodeArgs(raw json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalidRequest("malformed args: %v", err)
	}
	return nil
}
