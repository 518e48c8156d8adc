package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdfilter"
	"github.com/txn2/logfwd/pkg/fwdview"
)

const (
	defaultEventCount = 200
	maxEventCount     = 5000
)

// ChannelsHandler serves channel listings, filtered event pages and the
// live replay stream.
type ChannelsHandler struct {
	channels  types.ChannelReader
	replay    types.ReplaySource
	resolver  fwdevent.Resolver
	keepalive time.Duration
}

// NewChannelsHandler creates a new channels handler
func NewChannelsHandler(channels types.ChannelReader, replay types.ReplaySource, resolver fwdevent.Resolver) *ChannelsHandler {
	return &ChannelsHandler{
		channels:  channels,
		replay:    replay,
		resolver:  resolver,
		keepalive: 30 * time.Second,
	}
}

func (h *ChannelsHandler) channelResponse(info fwdview.ChannelInfo) types.ChannelResponse {
	resp := types.ChannelResponse{
		Key:      info.Key,
		App:      info.App,
		Sender:   info.Sender,
		Count:    info.Count,
		Total:    info.Total,
		MaxCount: info.MaxCount,
	}
	if h.replay != nil {
		if cache := h.replay.Get(info.Key); cache != nil {
			resp.Capacity = cache.Capacity()
			resp.Listeners = cache.Subscribers()
		}
	}
	return resp
}

// List returns every channel in creation order
func (h *ChannelsHandler) List(c *gin.Context) {
	if h.channels == nil {
		notReady(c, "Display state")
		return
	}

	infos := h.channels.Channels()
	response := types.ChannelListResponse{
		Channels: make([]types.ChannelResponse, len(infos)),
	}
	for i, info := range infos {
		response.Channels[i] = h.channelResponse(info)
	}

	respond(c, response, len(infos))
}

// buildFilter reads hide, include, exclude, term and regex parameters
func (h *ChannelsHandler) buildFilter(c *gin.Context) (fwdfilter.Filter, error) {
	levels := &fwdfilter.LevelSet{}
	for _, hide := range c.QueryArray("hide") {
		levels.HideNames(hide)
	}

	kind := fwdfilter.PlainText
	if boolQuery(c, "regex") {
		kind = fwdfilter.Regex
	}

	var list fwdfilter.TermList
	add := func(t fwdfilter.SearchTerm, err error) error {
		if err == nil {
			err = list.Add(t)
		}
		if errors.Is(err, fwdfilter.ErrDuplicateTerm) {
			return nil
		}
		return err
	}

	for _, p := range c.QueryArray("include") {
		if err := add(fwdfilter.NewTerm(kind, fwdfilter.Include, p)); err != nil {
			return fwdfilter.Filter{}, err
		}
	}
	for _, p := range c.QueryArray("exclude") {
		if err := add(fwdfilter.NewTerm(kind, fwdfilter.Exclude, p)); err != nil {
			return fwdfilter.Filter{}, err
		}
	}
	for _, s := range c.QueryArray("term") {
		if err := add(fwdfilter.ParseTerm(s)); err != nil {
			return fwdfilter.Filter{}, err
		}
	}

	return fwdfilter.Filter{
		Levels:   levels,
		Terms:    list.Terms(),
		Resolver: h.resolver,
	}, nil
}

func (h *ChannelsHandler) eventResponse(id int, ev *fwdevent.LogEvent, highlight []fwdfilter.SearchTerm) types.EventResponse {
	resp := types.EventResponse{
		ID:        h.resolver.ID(id),
		Timestamp: ev.Timestamp,
		Time:      h.resolver.FormatTimestamp(ev),
		Level:     ev.Level.String(),
		Logger:    h.resolver.FormatLogger(ev),
		Thread:    ev.Thread,
		Message:   ev.Message,
		Exception: ev.ExceptionText,
	}
	if ev.Location != nil {
		resp.Location = &types.LocationResponse{
			Class:  ev.Location.Class,
			Method: ev.Location.Method,
			File:   ev.Location.File,
			Line:   ev.Location.Line,
		}
	}
	if ev.Properties.Len() > 0 {
		resp.Properties = make(map[string]string, ev.Properties.Len())
		ev.Properties.Each(func(name, value string) {
			resp.Properties[name] = value
		})
	}
	if highlight != nil {
		for _, seg := range fwdfilter.Highlight(h.resolver.FormatMessage(ev), highlight) {
			resp.Segments = append(resp.Segments, types.SegmentResponse{
				Text:        seg.Text,
				Highlighted: seg.Highlighted,
			})
		}
	}
	return resp
}

// Events returns the newest events of a channel that pass the filter
func (h *ChannelsHandler) Events(c *gin.Context) {
	if h.channels == nil {
		notReady(c, "Display state")
		return
	}

	key := c.Param("key")
	info, events, ok := h.channels.Events(key)
	if !ok {
		fail(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Channel %s not found", key))
		return
	}

	filter, err := h.buildFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_TERM", err.Error())
		return
	}

	count := intQuery(c, "count", defaultEventCount, maxEventCount)
	var highlight []fwdfilter.SearchTerm
	if boolQuery(c, "highlight") {
		highlight = filter.Terms
		if highlight == nil {
			highlight = []fwdfilter.SearchTerm{}
		}
	}

	// ids are 0-based positions in the whole channel; Resolver.ID numbers from 1
	var ids []int
	var visible []*fwdevent.LogEvent
	for i, ev := range events {
		if filter.Visible(ev) {
			ids = append(ids, i)
			visible = append(visible, ev)
		}
	}
	matching := len(visible)
	if len(visible) > count {
		ids = ids[len(ids)-count:]
		visible = visible[len(visible)-count:]
	}

	response := types.EventsResponse{
		Channel:  h.channelResponse(info),
		Events:   make([]types.EventResponse, len(visible)),
		Matching: matching,
	}
	for i, ev := range visible {
		response.Events[i] = h.eventResponse(ids[i], ev, highlight)
	}
	for _, l := range filter.Levels.Hidden() {
		response.Hidden = append(response.Hidden, l.String())
	}
	for _, t := range filter.Terms {
		response.Terms = append(response.Terms, t.String())
	}

	respond(c, response, len(visible))
}

// Stream sends the channel's replay cache followed by live events as
// Server-Sent Events until the client disconnects.
func (h *ChannelsHandler) Stream(c *gin.Context) {
	if h.replay == nil {
		notReady(c, "Replay cache")
		return
	}

	key := c.Param("key")
	cache := h.replay.Get(key)
	if cache == nil {
		fail(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Channel %s not found", key))
		return
	}

	filter, err := h.buildFilter(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_TERM", err.Error())
		return
	}

	sub := cache.Subscribe()
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	_, _ = c.Writer.WriteString(": connected\n\n")
	c.Writer.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	seq := -1
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return false
			}
			seq++
			if !filter.Visible(ev) {
				return true
			}
			resp := h.eventResponse(seq, ev, nil)
			data, err := json.Marshal(resp)
			if err != nil {
				return true
			}
			_, _ = fmt.Fprintf(w, "id: %s\n", resp.ID)
			_, _ = fmt.Fprintf(w, "event: log\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			return true

		case <-keepalive.C:
			_, _ = fmt.Fprintf(w, ": keepalive\n\n")
			return true

		case <-c.Request.Context().Done():
			return false
		}
	})
}
