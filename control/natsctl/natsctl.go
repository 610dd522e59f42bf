// Package natsctl exposes a unit's parameters and bypass over NATS.
//
// Subjects, for a controller with id "studio":
//
//	revo.studio.set    {"param": "wet", "value": 70}, {"param": "timeinterval", "text": "250 ms"} or {"bypass": true}
//	revo.studio.get    request/reply, answers with the current state
//	revo.studio.state  state published after every accepted change
package natsctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/nats-io/nats.go"

	"github.com/cwbudde/algo-revo/dsp/params"
)

var debug = debuggo.Debug("revo:natsctl")

// ErrEmptyRequest is returned for a set request that names nothing to change.
var ErrEmptyRequest = errors.New("natsctl: request changes nothing")

// Connection is the subset of *nats.Conn the controller uses.
type Connection interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Publish(subject string, data []byte) error
	Close()
}

// ConnectionAdapter adapts *nats.Conn to Connection.
type ConnectionAdapter struct {
	conn *nats.Conn
}

// NewConnectionAdapter wraps conn.
func NewConnectionAdapter(conn *nats.Conn) *ConnectionAdapter {
	return &ConnectionAdapter{conn: conn}
}

func (a *ConnectionAdapter) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	return a.conn.Subscribe(subject, cb)
}

func (a *ConnectionAdapter) Publish(subject string, data []byte) error {
	return a.conn.Publish(subject, data)
}

func (a *ConnectionAdapter) Close() {
	a.conn.Close()
}

// Target is the controllable surface of a unit. *unit.Unit implements it.
type Target interface {
	Parameter(addr params.Address) float64
	SetParameter(addr params.Address, value float64)
	IsBypassed() bool
	SetBypass(on bool)
}

// SetRequest changes one parameter, the bypass state, or both. Value takes
// precedence over Text.
type SetRequest struct {
	Param  string   `json:"param,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Text   string   `json:"text,omitempty"`
	Bypass *bool    `json:"bypass,omitempty"`
}

// State is a snapshot of every parameter and the bypass flag.
type State struct {
	Parameters map[string]float64 `json:"parameters"`
	Display    map[string]string  `json:"display"`
	Bypass     bool               `json:"bypass"`
}

// Reply answers set and get requests.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	State *State `json:"state,omitempty"`
}

// Controller maps NATS messages onto a Target.
type Controller struct {
	conn   Connection
	target Target
	id     string

	applied  atomic.Uint64
	rejected atomic.Uint64
}

// Connect dials url, retrying a few times, and returns a controller for
// target. Call Start to subscribe.
func Connect(url, id string, target Target) (*Controller, error) {
	var nc *nats.Conn
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		nc, err = nats.Connect(url, nats.Name("revo-"+id))
		if err == nil {
			break
		}
		debug("connect to %s failed (attempt %d/3): %v", url, attempt, err)
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	debug("connected to %s", url)
	return NewController(NewConnectionAdapter(nc), id, target), nil
}

// NewController creates a controller on an existing connection.
func NewController(conn Connection, id string, target Target) *Controller {
	return &Controller{conn: conn, id: id, target: target}
}

// SetSubject returns the subject set requests arrive on.
func (c *Controller) SetSubject() string { return "revo." + c.id + ".set" }

// GetSubject returns the subject state requests arrive on.
func (c *Controller) GetSubject() string { return "revo." + c.id + ".get" }

// StateSubject returns the subject state changes are published on.
func (c *Controller) StateSubject() string { return "revo." + c.id + ".state" }

// Start subscribes to the set and get subjects.
func (c *Controller) Start() error {
	if _, err := c.conn.Subscribe(c.SetSubject(), c.handleSet); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.SetSubject(), err)
	}
	if _, err := c.conn.Subscribe(c.GetSubject(), c.handleGet); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.GetSubject(), err)
	}
	debug("listening on %s and %s", c.SetSubject(), c.GetSubject())
	return nil
}

// Close closes the connection.
func (c *Controller) Close() {
	c.conn.Close()
}

// Apply validates and applies one set request.
func (c *Controller) Apply(req SetRequest) error {
	if req.Param == "" && req.Bypass == nil {
		return ErrEmptyRequest
	}

	if req.Param != "" {
		d, ok := params.ByIdentifier(req.Param)
		if !ok {
			return fmt.Errorf("%w: %q", params.ErrUnknownParameter, req.Param)
		}
		var v float64
		switch {
		case req.Value != nil:
			v = *req.Value
		case req.Text != "":
			parsed, err := params.Parse(d.Address, req.Text)
			if err != nil {
				return err
			}
			v = parsed
		default:
			return fmt.Errorf("%w: no value for %q", ErrEmptyRequest, req.Param)
		}
		c.target.SetParameter(d.Address, v)
		debug("%s = %s", d.Identifier, params.Stringify(d.Address, c.target.Parameter(d.Address)))
	}

	if req.Bypass != nil {
		c.target.SetBypass(*req.Bypass)
		debug("bypass = %t", *req.Bypass)
	}
	return nil
}

// State returns the current parameter values.
func (c *Controller) State() State {
	s := State{
		Parameters: make(map[string]float64, params.Count),
		Display:    make(map[string]string, params.Count),
		Bypass:     c.target.IsBypassed(),
	}
	for _, d := range params.Table() {
		v := c.target.Parameter(d.Address)
		s.Parameters[d.Identifier] = v
		s.Display[d.Identifier] = params.Stringify(d.Address, v)
	}
	return s
}

// Stats returns the number of applied and rejected set requests.
func (c *Controller) Stats() (applied, rejected uint64) {
	return c.applied.Load(), c.rejected.Load()
}

func (c *Controller) handleSet(msg *nats.Msg) {
	var req SetRequest
	err := json.Unmarshal(msg.Data, &req)
	if err == nil {
		err = c.Apply(req)
	}

	if err != nil {
		c.rejected.Add(1)
		debug("rejected set request %q: %v", msg.Data, err)
		c.reply(msg, Reply{Error: err.Error()})
		return
	}

	c.applied.Add(1)
	state := c.State()
	c.reply(msg, Reply{OK: true, State: &state})
	c.publish(c.StateSubject(), state)
}

func (c *Controller) handleGet(msg *nats.Msg) {
	state := c.State()
	c.reply(msg, Reply{OK: true, State: &state})
}

func (c *Controller) reply(msg *nats.Msg, r Reply) {
	if msg.Reply == "" {
		return
	}
	c.publish(msg.Reply, r)
}

func (c *Controller) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		debug("marshal %s: %v", subject, err)
		return
	}
	if err := c.conn.Publish(subject, data); err != nil {
		debug("publish %s: %v", subject, err)
	}
}
