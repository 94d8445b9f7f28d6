package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

func (t *Tab) subscribeBrowserEvents(ctx context.Context) {
	t.t.Inspector.Enable()
	t.t.Page.Enable()
	t.t.Network.EnableWithParams(&gcdapi.NetworkEnableParams{
		MaxPostDataSize:       maximumPostDataSize,
		MaxResourceBufferSize: maximumResourceBufferSize,
		MaxTotalBufferSize:    maximumTotalBufferSize,
	})

	t.subscribeTargetCrashed()
	t.subscribeTargetDetached()
	t.subscribeLoadEvent()
	t.subscribeNetworkEvents(ctx)
}

// safe wraps handler, recovering and logging panics
func (t *Tab) safe(method string, handler func(payload []byte)) func(target *gcd.ChromeTarget, payload []byte) {
	return func(target *gcd.ChromeTarget, payload []byte) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("method", method).Str("panic", fmt.Sprintf("%v", r)).Msg("event handler failed")
			}
		}()
		handler(payload)
	}
}

func (t *Tab) subscribeTargetCrashed() {
	t.t.Subscribe("Inspector.targetCrashed", t.safe("Inspector.targetCrashed", func(payload []byte) {
		t.disconnected("crashed")
	}))
}

func (t *Tab) subscribeTargetDetached() {
	t.t.Subscribe("Inspector.detached", t.safe("Inspector.detached", func(payload []byte) {
		header := &gcdapi.InspectorDetachedEvent{}
		err := json.Unmarshal(payload, header)
		reason := "detached"

		if err == nil {
			reason = header.Params.Reason
		}
		t.disconnected(reason)
	}))
}

func (t *Tab) disconnected(reason string) {
	select {
	case <-t.exitCh:
		return // we closed it
	default:
	}

	t.handlerLock.RLock()
	handler := t.disconnectedHandler
	t.handlerLock.RUnlock()
	handler(t, reason)

	select {
	case t.crashedCh <- reason:
	case <-t.exitCh:
	default:
	}
}

// our default loadFiredEvent handler, signals Navigate once complete.
func (t *Tab) subscribeLoadEvent() {
	t.t.Subscribe("Page.loadEventFired", t.safe("Page.loadEventFired", func(payload []byte) {
		if !t.IsNavigating() {
			return
		}
		select {
		case t.navigationCh <- struct{}{}:
		default:
		}
	}))
}

func (t *Tab) subscribeNetworkEvents(ctx context.Context) {
	t.t.Subscribe("Network.requestWillBeSent", t.safe("Network.requestWillBeSent", func(payload []byte) {
		message := &gcdapi.NetworkRequestWillBeSentEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to decode request event")
			return
		}
		t.requestStarted(message.Params.RequestId)
		t.dispatch(GCDRequestToEvent(message))
	}))

	t.t.Subscribe("Network.responseReceived", t.safe("Network.responseReceived", func(payload []byte) {
		message := &gcdapi.NetworkResponseReceivedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to decode response event")
			return
		}
		t.dispatch(GCDResponseToEvent(message))
	}))

	t.t.Subscribe("Network.loadingFinished", t.safe("Network.loadingFinished", func(payload []byte) {
		message := &gcdapi.NetworkLoadingFinishedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		t.requestDone(message.Params.RequestId)
	}))

	t.t.Subscribe("Network.loadingFailed", t.safe("Network.loadingFailed", func(payload []byte) {
		message := &gcdapi.NetworkLoadingFailedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			return
		}
		log.Ctx(ctx).Debug().Str("request_id", message.Params.RequestId).Str("error", message.Params.ErrorText).Msg("request failed")
		t.requestDone(message.Params.RequestId)
	}))
}
