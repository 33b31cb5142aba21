package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// IdentityResponse represents one registered resident
type IdentityResponse struct {
	ID        int64  `json:"id" example:"1"`
	Key       string `json:"key" example:"b2021034"`
	Name      string `json:"name" example:"Asha Rao"`
	Hostel    string `json:"hostel" example:"North"`
	Room      string `json:"room" example:"212"`
	Contact   string `json:"contact,omitempty" example:"+91-9800000000"`
	CreatedAt string `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// IdentityListResponse wraps the resident list
type IdentityListResponse struct {
	Identities []IdentityResponse `json:"identities"`
}

// LogEntryResponse represents one entry/exit record
type LogEntryResponse struct {
	ID         int64  `json:"id" example:"12"`
	IdentityID int64  `json:"identity_id" example:"1"`
	Name       string `json:"name" example:"Asha Rao"`
	Key        string `json:"key" example:"b2021034"`
	Hostel     string `json:"hostel" example:"North"`
	Room       string `json:"room" example:"212"`
	Action     string `json:"action" example:"enter"`
	Timestamp  string `json:"timestamp" example:"2026-01-01T18:32:00Z"`
}

// LogListResponse wraps a log listing
type LogListResponse struct {
	Logs []LogEntryResponse `json:"logs"`
}

// MatchResultData is the tagged recognition outcome
type MatchResultData struct {
	Outcome    string  `json:"outcome" example:"matched"`
	IdentityID int64   `json:"identity_id,omitempty" example:"1"`
	Distance   float64 `json:"distance,omitempty" example:"0.41"`
}

// RecognitionStatusResponse is the published recognition state
type RecognitionStatusResponse struct {
	Running bool `json:"running" example:"true"`
	Latest  struct {
		Sequence int64             `json:"sequence" example:"87"`
		Match    MatchResultData   `json:"match"`
		Identity *IdentityResponse `json:"identity,omitempty"`
		At       string            `json:"at" example:"2026-01-01T18:32:01Z"`
	} `json:"latest"`
}

// SessionResponse is returned when a recognition session starts
type SessionResponse struct {
	SessionID string `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// SummaryResponse wraps one generated activity report
type SummaryResponse struct {
	Summary string `json:"summary" example:"Asha Rao from North (Room 212) had 3 entries and 2 exits this week."`
	Days    int    `json:"days" example:"7"`
}

// VoiceIdentifyResponse is the confirmed voice identification
type VoiceIdentifyResponse struct {
	Identity IdentityResponse  `json:"identity"`
	Log      *LogEntryResponse `json:"log,omitempty"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

var commonErrors = []response.Response{
	response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
	response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
}

func withCommon(errs ...response.Response) []response.Response {
	return append(errs, commonErrors...)
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Hostelgate Agent API",
		Version:     "v0.1.0",
		Description: "Local kiosk API for the dormitory face-recognition entry/exit agent",
		Host:        "localhost:8787",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/identities - Register resident
		endpoint.New(
			endpoint.POST,
			"/identities",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("Register a new resident"),
			endpoint.WithDescription("Registers a resident from a reference photo containing exactly one face, together with their roll number and profile fields."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(IdentityResponse{}, "201", "Resident registered successfully"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Missing required field"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DUPLICATE_KEY", Message: "Roll number already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
			)),
		),

		// GET /v1/identities - List residents
		endpoint.New(
			endpoint.GET,
			"/identities",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("List all residents"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(IdentityListResponse{}, "200", "Residents retrieved successfully"),
			}),
			endpoint.WithErrors(withCommon()),
		),

		// GET /v1/identities/{id} - Get resident
		endpoint.New(
			endpoint.GET,
			"/identities/{id}",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("Get one resident"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(IdentityResponse{}, "200", "Resident retrieved successfully"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "No identity registered with this ID"}, "404", "Not Found"),
			)),
		),

		// DELETE /v1/identities/{id} - Delete resident
		endpoint.New(
			endpoint.DELETE,
			"/identities/{id}",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("Delete a resident"),
			endpoint.WithDescription("Removes the resident and cascades to their entry/exit history."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Resident deleted"),
			}),
			endpoint.WithErrors(withCommon()),
		),

		// GET /v1/identities/{id}/logs - Resident history
		endpoint.New(
			endpoint.GET,
			"/identities/{id}/logs",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("One resident's entry/exit history"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithRequired()),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum entries, newest first (default: 50)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LogListResponse{}, "200", "History retrieved successfully"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "No identity registered with this ID"}, "404", "Not Found"),
			)),
		),

		// GET /v1/logs - All history
		endpoint.New(
			endpoint.GET,
			"/logs",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("Entry/exit history across all residents"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum entries, newest first (default: 50)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LogListResponse{}, "200", "History retrieved successfully"),
			}),
			endpoint.WithErrors(withCommon()),
		),

		// POST /v1/logs - Record action
		endpoint.New(
			endpoint.POST,
			"/logs",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("Record an entry/exit action"),
			endpoint.WithDescription("Appends an action (\"enter\" or \"leave\") for a registered resident. Identity fields are denormalized into the record at write time."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LogEntryResponse{}, "201", "Action recorded"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "INVALID_ACTION", Message: "Action must be \"enter\" or \"leave\""}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "No identity registered with this ID"}, "404", "Not Found"),
			)),
		),

		// GET /v1/recognition - Recognition status
		endpoint.New(
			endpoint.GET,
			"/recognition",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Latest published recognition result"),
			endpoint.WithDescription("The kiosk polls this between WebSocket events. The sequence number increases with each published result; stale worker results are never published."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognitionStatusResponse{}, "200", "Status retrieved successfully"),
			}),
			endpoint.WithErrors(withCommon()),
		),

		// POST /v1/recognition/session - Start session
		endpoint.New(
			endpoint.POST,
			"/recognition/session",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Start a recognition session"),
			endpoint.WithDescription("Opens the camera and starts the capture loop."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session started"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "SESSION_ALREADY_RUNNING", Message: "A recognition session is already running"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "CAMERA_UNAVAILABLE", Message: "Could not open the camera"}, "503", "Service Unavailable"),
			)),
		),

		// DELETE /v1/recognition/session - Stop session
		endpoint.New(
			endpoint.DELETE,
			"/recognition/session",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Stop the recognition session"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Session stopped"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "NO_SESSION", Message: "No recognition session is running"}, "409", "Conflict"),
			)),
		),

		// POST /v1/voice/identify - Voice fallback
		endpoint.New(
			endpoint.POST,
			"/voice/identify",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Identify by voice"),
			endpoint.WithDescription("Runs the spoken fallback: up to three attempts to hear a roll number or name, each gated by a spoken yes/no confirmation. Only allowed while the camera holds no current match. An optional action in the body is logged after confirmation."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VoiceIdentifyResponse{}, "200", "Identity confirmed"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "IDENTITY_RECOGNIZED", Message: "Face already recognized, voice fallback not needed"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "VOICE_UNAVAILABLE", Message: "Speech service is not configured"}, "503", "Service Unavailable"),
				response.New(ErrorResponse{Code: "VOICE_FAILED", Message: "Voice identification failed after all attempts"}, "401", "Unauthorized"),
			)),
		),

		// GET /v1/summary - Group summary
		endpoint.New(
			endpoint.GET,
			"/summary",
			endpoint.WithTags("Summaries"),
			endpoint.WithSummary("Hostel-wide activity report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("days", parameter.Query, parameter.WithDescription("Reporting window in days (default: 7)")),
				parameter.StrParam("group", parameter.Query, parameter.WithDescription("Hostel name; empty means all hostels")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SummaryResponse{}, "200", "Report generated"),
			}),
			endpoint.WithErrors(withCommon()),
		),

		// GET /v1/summary/identity/{id} - Resident summary
		endpoint.New(
			endpoint.GET,
			"/summary/identity/{id}",
			endpoint.WithTags("Summaries"),
			endpoint.WithSummary("One resident's activity report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("id", parameter.Path, parameter.WithRequired()),
				parameter.IntParam("days", parameter.Query, parameter.WithDescription("Reporting window in days (default: 7)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SummaryResponse{}, "200", "Report generated"),
			}),
			endpoint.WithErrors(withCommon(
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "No identity registered with this ID"}, "404", "Not Found"),
			)),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
