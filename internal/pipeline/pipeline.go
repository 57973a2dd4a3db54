// Package pipeline turns a raw subscription payload into Clash text:
// unwrap → split → decode per line → assemble → render.
package pipeline

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/sub2clash/internal/applog"
	"github.com/John-Robertt/sub2clash/internal/compiler"
	"github.com/John-Robertt/sub2clash/internal/model"
	"github.com/John-Robertt/sub2clash/internal/render"
	"github.com/John-Robertt/sub2clash/internal/sub"
	"github.com/John-Robertt/sub2clash/internal/sub/vmess"
)

// Stats counts what happened to the candidate lines of one run.
type Stats struct {
	OuterDecoded bool // payload was base64-wrapped

	Lines        int // candidate lines after trimming/filtering
	Decoded      int
	Skipped      int // recognized scheme, failed to decode
	Unrecognized int
}

type Result struct {
	Text     string
	Document *model.Document
	Stats    Stats
}

// Convert runs the whole conversion. It never fails: bad lines are logged
// and dropped, and zero decoded proxies still yields a valid document.
func Convert(raw string) Result {
	return ConvertWithLogger(raw, applog.WithComponent("pipeline"))
}

func ConvertWithLogger(raw string, log zerolog.Logger) Result {
	var st Stats

	payload := sub.Unwrap(raw)
	st.OuterDecoded = payload.Decoded
	if !payload.Decoded {
		log.Debug().Msg("payload is not base64, using raw text")
	}

	proxies := make([]model.Proxy, 0)
	for line := range sub.Lines(payload.Text) {
		st.Lines++
		p, err := sub.Decode(line)
		if err != nil {
			var de *sub.DecodeError
			switch {
			case errors.Is(err, sub.ErrUnrecognized):
				st.Unrecognized++
				log.Debug().Int("line", st.Lines).Msg("skipping unrecognized line")
			case errors.As(err, &de):
				de.Line = st.Lines
				st.Skipped++
				log.Warn().Err(de).Str("scheme", de.Scheme.String()).Int("line", st.Lines).Msg("skipping undecodable link")
			default:
				st.Skipped++
				log.Warn().Err(err).Int("line", st.Lines).Msg("skipping undecodable link")
			}
			continue
		}
		if p.Kind == model.KindVMess && !vmess.ValidUUID(p.VMess.UUID) {
			log.Debug().Str("name", p.Name).Msg("vmess id is not a canonical uuid")
		}
		st.Decoded++
		proxies = append(proxies, p)
	}

	if len(proxies) == 0 {
		log.Info().Int("lines", st.Lines).Msg("no proxies decoded")
	}

	doc := compiler.Assemble(proxies)
	log.Debug().
		Int("proxies", st.Decoded).
		Int("skipped", st.Skipped).
		Int("unrecognized", st.Unrecognized).
		Msg("document assembled")

	return Result{
		Text:     render.Clash(doc),
		Document: doc,
		Stats:    st,
	}
}
