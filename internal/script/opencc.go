package script

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/longbridgeapp/opencc"

	"subrelay/internal/logging"
)

// OpenCC maps text with one of the OpenCC conversion profiles (s2t, t2s,
// s2tw, s2hk, ...).
type OpenCC struct {
	profile   string
	converter *opencc.OpenCC
	logger    *slog.Logger
}

// NewOpenCC loads the dictionaries for profile.
func NewOpenCC(profile string, logger *slog.Logger) (*OpenCC, error) {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		profile = "s2t"
	}
	converter, err := opencc.New(profile)
	if err != nil {
		return nil, fmt.Errorf("load opencc profile %q: %w", profile, err)
	}
	return &OpenCC{
		profile:   profile,
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "script"),
	}, nil
}

func (o *OpenCC) Name() string { return "opencc:" + o.profile }

// Map converts text. A conversion failure returns text unchanged so the
// mapping stays total.
func (o *OpenCC) Map(text string) string {
	if text == "" {
		return text
	}
	out, err := o.converter.Convert(text)
	if err != nil {
		o.logger.Debug("opencc conversion failed; keeping source text",
			logging.String("profile", o.profile),
			logging.Error(err),
		)
		return text
	}
	return out
}
