package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/sub2clash/internal/fetch"
	"github.com/John-Robertt/sub2clash/internal/pipeline"
)

// UsageMessage is returned when the url query parameter is missing.
const UsageMessage = "请提供订阅链接，例如：?url=你的订阅链接"

type convertHandler struct {
	opt Options
}

func (h convertHandler) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)

	subURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if subURL == "" {
		metricsIncAppError("validate_request", "MISSING_URL")
		WriteText(w, http.StatusBadRequest, UsageMessage)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opt.ConvertTimeout)
	defer cancel()

	text, err := fetch.Subscription(ctx, subURL, fetch.Options{
		Timeout:   h.opt.FetchTimeout,
		MaxBytes:  h.opt.MaxBodyBytes,
		UserAgent: h.opt.UserAgent,
		Client:    h.opt.Client,
	})
	if err != nil {
		logFetchError(log, err)
		WriteFailure(w, err)
		return
	}

	res := pipeline.ConvertWithLogger(text, log.With().Str("component", "pipeline").Logger())
	metricsAddConversion(res.Stats)
	log.Info().
		Bool("base64", res.Stats.OuterDecoded).
		Int("lines", res.Stats.Lines).
		Int("proxies", res.Stats.Decoded).
		Int("skipped", res.Stats.Skipped+res.Stats.Unrecognized).
		Msg("subscription converted")

	WriteYAML(w, res.Text)
}

func logFetchError(log zerolog.Logger, err error) {
	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		metricsIncAppError(fe.AppError.Stage, fe.AppError.Code)
		// The cause may embed the subscription URL (and its token); log the message only.
		log.Warn().Str("error", fe.AppError.Message).Int("status", fe.Status).Str("code", fe.AppError.Code).Msg("fetch subscription failed")
		return
	}
	metricsIncAppError("fetch_sub", "INTERNAL_ERROR")
	log.Error().Err(err).Msg("fetch subscription failed")
}
