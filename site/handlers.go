package site

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/handler"
	"github.com/platform-smith-labs/siteedge/locale"
)

// ProjectListParams filters the project listing.
type ProjectListParams struct {
	Category string `query:"category" validate:"omitempty,max=64"`
}

// ProjectParams selects one project.
type ProjectParams struct {
	Slug string `param:"slug" validate:"required,max=120"`
}

// ContactForm is the body of a contact submission. The locale comes from the
// URL, not the form.
type ContactForm struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,e164"`
	Company string `json:"company,omitempty" validate:"omitempty,max=160"`
	Topic   string `json:"topic" validate:"required,oneof=firelink coldchain vibration general"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Consent bool   `json:"consent" validate:"required"`
}

// SiteInfo is the public settings payload rendered into every page.
type SiteInfo struct {
	Locale       locale.Locale              `json:"locale"`
	Locales      []locale.Locale            `json:"locales"`
	SiteURL      string                     `json:"siteUrl"`
	APIBaseURL   string                     `json:"apiBaseUrl"`
	PublicAPIURL string                     `json:"publicApiUrl,omitempty"`
	Config       map[string]json.RawMessage `json:"config"`
}

// HealthReport is what /healthz reports in addition to the status code.
type HealthReport struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
}

// ListProjects returns published projects, narrowed to one category when
// ?category= is given.
func ListProjects(ctx handler.HandlerContext[ProjectListParams, struct{}], w http.ResponseWriter, r *http.Request) ([]apiclient.Project, error) {
	var (
		projects []apiclient.Project
		err      error
	)
	if category := ctx.Params.Value().Category; category != "" {
		projects, err = ctx.API.ListProjectsByCategory(ctx.Context, category)
	} else {
		projects, err = ctx.API.ListProjects(ctx.Context)
	}
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []apiclient.Project{}
	}
	return projects, nil
}

// GetProject returns one project by slug.
func GetProject(ctx handler.HandlerContext[ProjectParams, struct{}], w http.ResponseWriter, r *http.Request) (apiclient.Project, error) {
	return ctx.API.GetProject(ctx.Context, ctx.Params.Value().Slug)
}

// SubmitContact forwards a validated contact form in the page locale.
func SubmitContact(ctx handler.HandlerContext[struct{}, ContactForm], w http.ResponseWriter, r *http.Request) (apiclient.Consultation, error) {
	form := ctx.Body.Value()

	consultation, err := ctx.API.SubmitConsultation(ctx.Context, apiclient.ConsultationRequest{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Company: form.Company,
		Topic:   form.Topic,
		Message: form.Message,
		Locale:  ctx.Locale.String(),
		Consent: form.Consent,
	})
	if err != nil {
		return apiclient.Consultation{}, err
	}

	ctx.Logger.Info("Consultation submitted",
		"consultation_id", consultation.ID,
		"topic", consultation.Topic,
		"locale", ctx.Locale,
	)
	return consultation, nil
}

// SiteInfoHandler builds the /content/site handler for opts.
func SiteInfoHandler(opts Options) handler.Handler[struct{}, struct{}, SiteInfo] {
	apiBase := browserAPIBase(opts.PublicAPIURL)

	return func(ctx handler.HandlerContext[struct{}, struct{}], w http.ResponseWriter, r *http.Request) (SiteInfo, error) {
		info := SiteInfo{
			Locale:       ctx.Locale,
			Locales:      locale.Supported,
			SiteURL:      opts.SiteURL,
			APIBaseURL:   apiBase,
			PublicAPIURL: opts.PublicAPIURL,
			Config:       map[string]json.RawMessage{},
		}

		entries, err := ctx.API.GetConfigs(ctx.Context, opts.ConfigKeys...)
		if err != nil {
			return SiteInfo{}, err
		}
		for _, entry := range entries {
			info.Config[entry.Key] = entry.Value
		}
		return info, nil
	}
}

// healthTimeout bounds the backend probe so /healthz answers quickly.
const healthTimeout = 3 * time.Second

// Healthz reports 200 when the backend is healthy and 503 otherwise.
func Healthz(ctx handler.HandlerContext[struct{}, struct{}], w http.ResponseWriter, r *http.Request) (HealthReport, error) {
	report := HealthReport{Status: core.HealthStatusOK, Checks: map[string]bool{"backend": true}}

	probeCtx, cancel := context.WithTimeout(ctx.Context, healthTimeout)
	defer cancel()

	backend, err := ctx.API.Health(probeCtx)
	if err != nil || !backend.Healthy() {
		report.Status = core.HealthStatusDegraded
		report.Checks["backend"] = false
		if err != nil {
			ctx.Logger.Warn("Backend health check failed", "error", err.Error())
		}
	}

	if err := core.Health(w, report.Status, report.Checks); err != nil {
		ctx.Logger.Error("Failed to write health response", "error", err.Error())
	}
	return report, nil
}
