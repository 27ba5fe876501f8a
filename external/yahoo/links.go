package yahoo

import (
	"net/url"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type site struct {
	host string
	path string
}

var sites = map[string]site{
	"nba": {host: "basketball.fantasysports.yahoo.com", path: "nba"},
	"nfl": {host: "football.fantasysports.yahoo.com", path: "f1"},
	"mlb": {host: "baseball.fantasysports.yahoo.com", path: "b1"},
	"nhl": {host: "hockey.fantasysports.yahoo.com", path: "hockey"},
}

// TradeLinks renders deep links into the provider's trade pages. The
// provider has no API to complete a trade, so users finish it there.
type TradeLinks struct{}

func NewTradeLinks() TradeLinks {
	return TradeLinks{}
}

// ProposeTradeURL opens the trade screen against the counterpart team with the players preselected.
func (TradeLinks) ProposeTradeURL(c usecase.TradeLinkContext) string {
	q := url.Values{}
	q.Set("stage", "1")
	if c.CounterpartNumber != "" {
		q.Set("mid2", c.CounterpartNumber)
	}
	for _, p := range c.PlayerNumbers {
		q.Add("tpids[]", p)
	}
	return teamPage(c, "proposetrade", q)
}

func (TradeLinks) PendingTradesURL(c usecase.TradeLinkContext) string {
	return teamPage(c, "pendingtrades", nil)
}

func teamPage(c usecase.TradeLinkContext, page string, q url.Values) string {
	s, ok := sites[c.GameCode]
	if !ok {
		s = site{host: "sports.yahoo.com", path: "fantasy"}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("https://" + s.host + "/" + s.path + "/" + url.PathEscape(c.LeagueNumber))
	if c.TeamNumber != "" {
		_, _ = buf.WriteString("/" + url.PathEscape(c.TeamNumber))
	}
	_, _ = buf.WriteString("/" + page)
	if encoded := q.Encode(); encoded != "" {
		_, _ = buf.WriteString("?" + encoded)
	}
	return buf.String()
}
