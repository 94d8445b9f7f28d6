package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/trackerker/scanner/domain"
	"gitlab.com/trackerker/trackerk"
)

// Correlator builds the ordered log of network exchanges for a single scan. Each
// request event appends a record which is indexed by its correlation id, a later
// response event is attached to the record found by that id.
//
// When a response has no usable id, the most recent record for the same url
// that has no response yet is used instead. This match is best effort: with
// pipelined or duplicate requests to the same url the response may be attached
// to the wrong one of them.
type Correlator struct {
	exchangeLock sync.RWMutex
	exchanges    []*trackerk.NetworkExchange
	index        map[string]int
	pending      map[string]*trackerk.NetworkEvent // responses seen before their request
	misses       int
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCorrelator for a single scan
func NewCorrelator(logger zerolog.Logger) *Correlator {
	return &Correlator{
		exchanges: make([]*trackerk.NetworkExchange, 0),
		index:     make(map[string]int),
		pending:   make(map[string]*trackerk.NetworkEvent),
		logger:    logger,
		now:       time.Now,
	}
}

// Drain events until stop is closed, then consume whatever is still buffered
// and return.
func (c *Correlator) Drain(events <-chan *trackerk.NetworkEvent, stop <-chan struct{}) {
	for {
		select {
		case evt := <-events:
			c.Observe(evt)
		case <-stop:
			for {
				select {
				case evt := <-events:
					c.Observe(evt)
				default:
					return
				}
			}
		}
	}
}

// Observe a single network event. Never panics, any failure is logged.
func (c *Correlator) Observe(evt *trackerk.NetworkEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("failed to correlate network event")
		}
	}()

	if evt == nil {
		return
	}

	switch evt.Type {
	case trackerk.EvtRequest:
		c.OnRequest(evt)
	case trackerk.EvtResponse:
		c.OnResponse(evt)
	default:
		c.logger.Debug().Int8("type", int8(evt.Type)).Msg("ignoring unknown network event type")
	}
}

// OnRequest appends a new exchange record
func (c *Correlator) OnRequest(evt *trackerk.NetworkEvent) {
	id := evt.RequestID
	if id == "" {
		id = fmt.Sprintf("req-%d", trackerk.NextRequestID())
	}

	observed := evt.Observed
	if observed.IsZero() {
		observed = c.now()
	}

	exchange := &trackerk.NetworkExchange{
		ID:           id,
		URL:          evt.URL,
		Domain:       domain.Registered(evt.URL),
		ResourceType: evt.ResourceType,
		Method:       evt.Method,
		Timestamp:    observed.UTC(),
	}

	c.exchangeLock.Lock()
	defer c.exchangeLock.Unlock()

	// chrome re-uses the request id across redirect hops, the previous hop's
	// response arrives with the next request instead of as its own event
	if prev, ok := c.index[id]; ok && evt.RedirectStatus != 0 {
		c.exchanges[prev].Respond(evt.RedirectStatus, evt.RedirectHeaders)
	}

	c.exchanges = append(c.exchanges, exchange)
	c.index[id] = len(c.exchanges) - 1

	if resp, ok := c.pending[id]; ok {
		exchange.Respond(resp.Status, resp.Headers)
		delete(c.pending, id)
	}
}

// OnResponse attaches status and headers to the originating request's record
func (c *Correlator) OnResponse(evt *trackerk.NetworkEvent) {
	c.exchangeLock.Lock()
	defer c.exchangeLock.Unlock()

	if evt.RequestID != "" {
		idx, ok := c.index[evt.RequestID]
		if !ok {
			// the request has not been seen yet, it picks this up when it arrives
			c.pending[evt.RequestID] = evt
			return
		}
		if !c.exchanges[idx].Respond(evt.Status, evt.Headers) {
			c.logger.Debug().Str("request_id", evt.RequestID).Msg("duplicate response for request, dropping")
		}
		return
	}

	// no id from the driver, match the latest record for the url without a status
	for i := len(c.exchanges) - 1; i >= 0; i-- {
		exchange := c.exchanges[i]
		if exchange.URL == evt.URL && !exchange.HasResponse() {
			exchange.Respond(evt.Status, evt.Headers)
			return
		}
	}

	c.misses++
	c.logger.Debug().Str("request_id", evt.RequestID).Str("url", evt.URL).Msg("unable to correlate response, dropping")
}

// Exchanges returns a copy of all records in observation order
func (c *Correlator) Exchanges() []trackerk.NetworkExchange {
	c.exchangeLock.RLock()
	defer c.exchangeLock.RUnlock()

	exchanges := make([]trackerk.NetworkExchange, len(c.exchanges))
	for i, exchange := range c.exchanges {
		exchanges[i] = exchange.Copy()
	}
	return exchanges
}

// Len of the exchange log
func (c *Correlator) Len() int {
	c.exchangeLock.RLock()
	defer c.exchangeLock.RUnlock()
	return len(c.exchanges)
}

// Misses is the number of responses that could not be correlated, including
// those still waiting for a request that never arrived
func (c *Correlator) Misses() int {
	c.exchangeLock.RLock()
	defer c.exchangeLock.RUnlock()
	return c.misses + len(c.pending)
}
