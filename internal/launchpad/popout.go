package launchpad

import (
	"net/url"
	"strings"
)

// Pop-out query parameter names. A detached panel's descriptive state is
// carried in a URL query string and reconstructed in the standalone view;
// the round trip must reproduce an equivalent panel.
const (
	popoutParamID     = "id"
	popoutParamType   = "type"
	popoutParamTitle  = "title"
	popoutParamSymbol = "symbol"
	popoutParamLinked = "linked"
)

// EncodePanel serializes a panel's descriptive state for pop-out.
func EncodePanel(p PanelConfig) url.Values {
	v := url.Values{}
	v.Set(popoutParamID, p.ID)
	v.Set(popoutParamType, string(p.Type))
	v.Set(popoutParamTitle, p.Title)
	if p.Symbol != "" {
		v.Set(popoutParamSymbol, p.Symbol)
	}
	v.Set(popoutParamLinked, boolParam(p.Linked))
	return v
}

// DecodePanel reconstructs a panel from pop-out query parameters. A
// missing linked parameter decodes as linked.
func DecodePanel(v url.Values) PanelConfig {
	linked := true
	if raw := v.Get(popoutParamLinked); raw != "" {
		linked = strings.EqualFold(raw, "true") || raw == "1"
	}
	return PanelConfig{
		ID:     v.Get(popoutParamID),
		Type:   PanelType(v.Get(popoutParamType)),
		Title:  v.Get(popoutParamTitle),
		Symbol: strings.ToUpper(v.Get(popoutParamSymbol)),
		Linked: linked,
	}
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
