package deliverability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/pkg/logger"
	"github.com/ignite/deliverability-engine/internal/validation"
)

// MinDomainScore is the reputation a domain must exceed to pass the domain
// gate.
const MinDomainScore = 50

// ProbeConfig holds the sender identity and default content of a probe.
type ProbeConfig struct {
	FromEmail string
	FromName  string
	Subject   string
	HTML      string
}

func (c ProbeConfig) from() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}

// Probe runs the format → domain → mx → smtp gates and, when all pass,
// sends a real message. It is safe for concurrent use.
type Probe struct {
	oracle    ReputationOracle
	mx        MXChecker
	session   SessionChecker
	transport Transport
	renderer  TemplateRenderer
	cfg       ProbeConfig
}

// NewProbe creates a probe. renderer may be nil, in which case request
// templates are sent without merge-tag resolution.
func NewProbe(oracle ReputationOracle, mx MXChecker, session SessionChecker, transport Transport, renderer TemplateRenderer, cfg ProbeConfig) *Probe {
	if cfg.Subject == "" {
		cfg.Subject = "Deliverability check"
	}
	if cfg.HTML == "" {
		cfg.HTML = "<p>This is an automated deliverability check. No action is required.</p>"
	}
	return &Probe{
		oracle:    oracle,
		mx:        mx,
		session:   session,
		transport: transport,
		renderer:  renderer,
		cfg:       cfg,
	}
}

// Check probes a recipient. It never returns an error or panics: every
// collaborator failure becomes a result with Success=false, and the gates
// that passed before the failure stay recorded in Checks.
func (p *Probe) Check(ctx context.Context, req domain.ProbeRequest) (res domain.ProbeResult) {
	res.ProbeID = uuid.NewString()
	to := domain.NormalizeAddress(req.To)
	stage := "format"

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.MessageID = ""
			res.Error = fmt.Sprintf("%s check aborted: %v", stage, r)
			logger.Error("probe collaborator panicked", "probe_id", res.ProbeID, "stage", stage, "to", to, "panic", r)
		}
	}()

	if !validation.IsValidFormat(to) {
		res.Error = "invalid format"
		return res
	}
	res.Checks.Format = true
	rcptDomain := domain.DomainOf(to)

	stage = "domain"
	score, err := p.oracle.ScoreDomain(ctx, rcptDomain)
	if err != nil {
		return p.fail(res, stage, to, fmt.Errorf("reputation lookup failed: %w", err))
	}
	if score <= MinDomainScore {
		res.Error = fmt.Sprintf("domain reputation too low (%.0f)", score)
		return res
	}
	res.Checks.Domain = true

	stage = "mx"
	ok, err := p.mx.HasMX(ctx, rcptDomain)
	if err != nil {
		return p.fail(res, stage, to, fmt.Errorf("mx lookup failed: %w", err))
	}
	if !ok {
		res.Error = "no mail exchanger for domain"
		return res
	}
	res.Checks.MX = true

	stage = "smtp"
	ok, err = p.session.CanConnect(ctx, rcptDomain)
	if err != nil {
		return p.fail(res, stage, to, fmt.Errorf("smtp session failed: %w", err))
	}
	if !ok {
		res.Error = "smtp session could not be established"
		return res
	}
	res.Checks.SMTP = true

	stage = "render"
	msg, err := p.message(to, rcptDomain, req)
	if err != nil {
		return p.fail(res, stage, to, err)
	}

	stage = "send"
	receipt, err := p.transport.Send(ctx, msg)
	if err != nil {
		return p.fail(res, stage, to, err)
	}

	res.Success = true
	res.MessageID = receipt.MessageID
	logger.Info("probe delivered", "probe_id", res.ProbeID, "to", to, "message_id", receipt.MessageID)
	return res
}

func (p *Probe) fail(res domain.ProbeResult, stage, to string, err error) domain.ProbeResult {
	logger.Warn("probe check failed", "probe_id", res.ProbeID, "stage", stage, "to", to, "error", err)
	res.Success = false
	res.Error = err.Error()
	return res
}

func (p *Probe) message(to, rcptDomain string, req domain.ProbeRequest) (domain.OutboundMessage, error) {
	msg := domain.OutboundMessage{
		From:    p.cfg.from(),
		To:      to,
		Subject: p.cfg.Subject,
		HTML:    p.cfg.HTML,
	}
	if req.Template == nil {
		return msg, nil
	}

	tpl := *req.Template
	if p.renderer != nil {
		data := make(map[string]any, len(req.MergeData)+2)
		for k, v := range req.MergeData {
			data[k] = v
		}
		data["email"] = to
		data["domain"] = rcptDomain

		rendered, err := p.renderer.Render(tpl, data)
		if err != nil {
			return msg, fmt.Errorf("render template: %w", err)
		}
		tpl = rendered
	}

	msg.Subject = tpl.Subject
	msg.HTML = tpl.HTMLContent
	return msg, nil
}
