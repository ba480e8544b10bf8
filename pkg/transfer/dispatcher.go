package transfer

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/pnft-transfer/pkg/metrics"
	"github.com/code-payments/pnft-transfer/pkg/solana"
)

const (
	dispatcherMetricsStructName = "transfer.dispatcher"

	transferEventName       = "TransferDispatched"
	rejectionMetricName     = "Transfer/rejected"
	invocationFailureMetric = "Transfer/invocation_failed"
)

// Dispatcher resolves metadata, assembles the Transfer call and issues it
// through an Invoker.
type Dispatcher struct {
	log      *logrus.Entry
	conf     *conf
	reader   AccountInfoGetter
	resolver *Resolver
	invoker  Invoker
}

func NewDispatcher(reader AccountInfoGetter, invoker Invoker, configProvider ConfigProvider) *Dispatcher {
	return &Dispatcher{
		log:      logrus.StandardLogger().WithField("type", "transfer/dispatcher"),
		conf:     configProvider(),
		reader:   reader,
		resolver: NewResolver(reader, configProvider),
		invoker:  invoker,
	}
}

// Transfer moves one unit of req.Mint from the source to the destination
// token account. Every check happens before the single invocation, so
// nothing is issued when an error other than ErrInvocationFailed is
// returned.
func (d *Dispatcher) Transfer(ctx context.Context, req *Request) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, dispatcherMetricsStructName, "Transfer")
	defer tracer.End()

	var sig solana.Signature

	if err := req.Validate(); err != nil {
		d.recordRejection(ctx, "invalid_request")
		return sig, err
	}

	mode := req.InvocationMode()

	log := d.log.WithFields(logrus.Fields{
		"method":    "Transfer",
		"mint":      base58.Encode(req.Mint),
		"metadata":  base58.Encode(req.Metadata),
		"authority": base58.Encode(req.Authority),
		"mode":      mode.String(),
	})

	metadata, err := d.resolver.Resolve(ctx, req.Mint, req.Metadata)
	if err != nil {
		if errors.Is(err, ErrDecode) {
			d.recordRejection(ctx, "decode")
		}
		tracer.OnError(err)
		return sig, err
	}

	call, err := Build(req, metadata, BuildOptions{
		DeriveTokenRecords: d.conf.deriveTokenRecords.Get(ctx),
	})
	if err != nil {
		log.WithError(err).Debug("transfer rejected")
		d.recordRejection(ctx, rejectionReason(err))
		return sig, err
	}

	if d.conf.verifyPayer.Get(ctx) {
		if err := d.verifyPayer(ctx, call.Payer()); err != nil {
			if errors.Is(err, ErrPayerCarriesData) {
				log.WithError(err).Debug("transfer rejected")
				d.recordRejection(ctx, "payer_carries_data")
			} else {
				log.WithError(err).Warn("failure verifying payer")
				tracer.OnError(err)
			}
			return sig, err
		}
	}

	log = log.WithFields(logrus.Fields{
		"accounts":     len(call.accounts),
		"programmable": call.IsProgrammable(),
		"rule_set":     encodeOptional(call.RuleSet()),
	})

	switch mode {
	case InvocationModeDirect:
		sig, err = d.invoker.Invoke(ctx, call)
	case InvocationModeDelegated:
		if err := verifySigner(call, req.Signer); err != nil {
			log.WithError(err).Debug("transfer rejected")
			d.recordRejection(ctx, "invalid_signer_seeds")
			return sig, err
		}
		sig, err = d.invoker.InvokeSigned(ctx, call, req.Signer)
	default:
		return sig, errors.Wrapf(ErrInvalidRequest, "unsupported invocation mode %s", mode)
	}

	if err != nil {
		log.WithError(err).Warn("transfer invocation failed")
		tracer.OnError(err)
		metrics.RecordCount(ctx, invocationFailureMetric, 1)
		return sig, errors.Wrap(ErrInvocationFailed, err.Error())
	}

	metrics.RecordEvent(ctx, transferEventName, map[string]interface{}{
		"mint":          base58.Encode(req.Mint),
		"mode":          mode.String(),
		"account_count": len(call.accounts),
		"programmable":  call.IsProgrammable(),
		"rule_set":      encodeOptional(call.RuleSet()),
		"signature":     sig.ToBase58(),
	})
	log.WithField("signature", sig.ToBase58()).Debug("transfer dispatched")

	return sig, nil
}

// verifyPayer rejects payers that own data. A payer with no account yet is
// left for the runtime to judge.
func (d *Dispatcher) verifyPayer(ctx context.Context, payer ed25519.PublicKey) error {
	commitment := solana.CommitmentFromString(d.conf.commitment.Get(ctx))

	info, err := d.reader.GetAccountInfo(payer, commitment)
	if errors.Is(err, solana.ErrNoAccountInfo) {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "error getting payer account")
	}

	if len(info.Data) > 0 {
		return errors.Wrapf(ErrPayerCarriesData, "payer %s holds %d bytes", base58.Encode(payer), len(info.Data))
	}
	return nil
}

// verifySigner checks that the seeds derive an address under the signing
// program, and that the address is one of the call's signers.
func verifySigner(call *AssembledCall, signer *ProgramSigner) error {
	address, err := solana.CreateProgramAddress(signer.Program, signer.Seeds...)
	if err != nil {
		return errors.Wrap(ErrInvalidSignerSeeds, err.Error())
	}

	for _, s := range call.Signers() {
		if bytes.Equal(s, address) {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidSignerSeeds, "derived %s does not sign the transfer", base58.Encode(address))
}

func (d *Dispatcher) recordRejection(ctx context.Context, reason string) {
	metrics.RecordCount(ctx, rejectionMetricName+"/"+reason, 1)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrBadRuleSet):
		return "bad_rule_set"
	case errors.Is(err, ErrMissingRuleSetAccount):
		return "missing_rule_set_account"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "other"
}

func encodeOptional(key ed25519.PublicKey) string {
	if len(key) == 0 {
		return ""
	}
	return base58.Encode(key)
}
