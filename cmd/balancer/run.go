package main

import (
	"fmt"
	"math/big"

	"github.com/defistate/balancer-sdk-go/addliquidity"
	"github.com/defistate/balancer-sdk-go/cmd/balancer/config"
	"github.com/defistate/balancer-sdk-go/exit"
	"github.com/defistate/balancer-sdk-go/pools"
	"github.com/defistate/balancer-sdk-go/priceimpact"
	"github.com/defistate/balancer-sdk-go/removeliquidity"
	"github.com/defistate/balancer-sdk-go/slippage"
	"github.com/defistate/balancer-sdk-go/swap"
	"github.com/defistate/balancer-sdk-go/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// request is a validated configuration resolved against its pool.
type request struct {
	cfg       *config.Config
	pool      pools.Pool
	slippage  slippage.Slippage
	sender    common.Address
	recipient common.Address
}

func runOperation(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	path := flagString(cmd.Flags(), "config")
	e.logger.Info("Loading configuration", "path", path)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	res, err := e.run(cfg)
	if err != nil {
		e.logger.Error("Operation failed", "type", cfg.Operation.Type, "kind", cfg.Operation.Kind, "error", err)
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func (e *env) run(cfg *config.Config) (result, error) {
	reg, err := e.loadPools(cfg.PoolsFile, cfg.ChainID)
	if err != nil {
		return result{}, err
	}
	p, err := reg.Pool(common.HexToHash(cfg.PoolID))
	if err != nil {
		return result{}, err
	}
	s, err := slippage.FromPercentage(cfg.Slippage)
	if err != nil {
		return result{}, err
	}
	req := request{
		cfg:      cfg,
		pool:     p,
		slippage: s,
		sender:   common.HexToAddress(cfg.Sender),
	}
	if cfg.Recipient != "" {
		req.recipient = common.HexToAddress(cfg.Recipient)
	}

	var res result
	switch cfg.Operation.Type {
	case config.TypeAdd:
		res, err = e.add(req)
	case config.TypeRemove:
		res, err = e.remove(req)
	case config.TypeExit:
		res, err = e.exit(req)
	case config.TypeSwap:
		res, err = e.swap(req)
	default:
		err = fmt.Errorf("unknown operation type %q", cfg.Operation.Type)
	}
	if err != nil {
		return result{}, err
	}
	res.Operation = cfg.Operation.Type
	res.PoolID = p.ID()
	res.PoolType = p.Type()
	res.Slippage = s.String()
	return res, nil
}

func (e *env) add(req request) (result, error) {
	op := req.cfg.Operation
	base := addliquidity.Base{ChainID: req.cfg.ChainID, UseNativeAsset: op.Native}

	var in addliquidity.Input
	switch op.Kind {
	case "unbalanced", "init":
		amounts, err := inputAmounts(req.pool, op.Amounts)
		if err != nil {
			return result{}, err
		}
		in = addliquidity.UnbalancedInput{Base: base, AmountsIn: amounts}
		if op.Kind == "init" {
			in = addliquidity.InitInput{Base: base, AmountsIn: amounts}
		}
	case "single_token", "proportional":
		bpt, err := bptAmount(req.pool, op.Bpt)
		if err != nil {
			return result{}, err
		}
		in = addliquidity.ProportionalInput{Base: base, BptOut: bpt}
		if op.Kind == "single_token" {
			in = addliquidity.SingleTokenInput{Base: base, BptOut: bpt, TokenIn: common.HexToAddress(op.TokenIn)}
		}
	default:
		return result{}, fmt.Errorf("unknown add kind %q", op.Kind)
	}

	eng, err := addliquidity.New(&addliquidity.Config{Logger: e.logger.With("component", "addliquidity"), Registry: e.registry})
	if err != nil {
		return result{}, err
	}
	q, err := eng.Query(in, req.pool)
	if err != nil {
		return result{}, err
	}
	call, err := eng.BuildCall(addliquidity.BuildInput{Query: q, Slippage: req.slippage, Sender: req.sender, Recipient: req.recipient})
	if err != nil {
		return result{}, err
	}

	var limits []amountOutput
	if q.Kind.ExactIn() {
		limits, err = limitOutputs([]token.Token{q.BptOut.Token()}, call.MinBptOut)
	} else {
		limits, err = limitOutputs(q.Tokens, call.MaxAmountsIn...)
	}
	if err != nil {
		return result{}, err
	}
	return result{
		Kind:        q.Kind.String(),
		AmountsIn:   amountOutputs(q.AmountsIn...),
		AmountsOut:  amountOutputs(q.BptOut),
		Limits:      limits,
		PriceImpact: e.impact(priceimpact.AddLiquidity(in, req.pool)),
		Call:        newCallOutput(call.To, call.CallData, call.Value),
	}, nil
}

func (e *env) remove(req request) (result, error) {
	op := req.cfg.Operation
	base := removeliquidity.Base{ChainID: req.cfg.ChainID, ReceiveNativeAsset: op.Native}

	var in removeliquidity.Input
	switch op.Kind {
	case "single_token_exact_in", "proportional":
		bpt, err := bptAmount(req.pool, op.Bpt)
		if err != nil {
			return result{}, err
		}
		in = removeliquidity.ProportionalInput{Base: base, BptIn: bpt}
		if op.Kind == "single_token_exact_in" {
			in = removeliquidity.SingleTokenExactInInput{Base: base, BptIn: bpt, TokenOut: common.HexToAddress(op.TokenOut)}
		}
	case "single_token_exact_out", "custom":
		amounts, err := inputAmounts(req.pool, op.Amounts)
		if err != nil {
			return result{}, err
		}
		in = removeliquidity.CustomInput{Base: base, AmountsOut: amounts}
		if op.Kind == "single_token_exact_out" {
			if len(amounts) != 1 {
				return result{}, fmt.Errorf("single_token_exact_out takes one amount, got %d", len(amounts))
			}
			in = removeliquidity.SingleTokenExactOutInput{Base: base, AmountOut: amounts[0]}
		}
	default:
		return result{}, fmt.Errorf("unknown remove kind %q", op.Kind)
	}

	eng, err := removeliquidity.New(&removeliquidity.Config{Logger: e.logger.With("component", "removeliquidity"), Registry: e.registry})
	if err != nil {
		return result{}, err
	}
	q, err := eng.Query(in, req.pool)
	if err != nil {
		return result{}, err
	}
	call, err := eng.BuildCall(removeliquidity.BuildInput{Query: q, Slippage: req.slippage, Sender: req.sender, Recipient: req.recipient})
	if err != nil {
		return result{}, err
	}
	res, err := removalResult(q.Kind.String(), q, call)
	if err != nil {
		return result{}, err
	}
	res.PriceImpact = e.impact(priceimpact.RemoveLiquidity(in, req.pool))
	return res, nil
}

func (e *env) exit(req request) (result, error) {
	op := req.cfg.Operation
	base := exit.Base{ChainID: req.cfg.ChainID, ReceiveNativeAsset: op.Native}

	var in exit.Input
	switch op.Kind {
	case "single_asset", "proportional":
		bpt, err := bptAmount(req.pool, op.Bpt)
		if err != nil {
			return result{}, err
		}
		in = exit.ProportionalInput{Base: base, BptIn: bpt}
		if op.Kind == "single_asset" {
			in = exit.SingleAssetInput{Base: base, BptIn: bpt, TokenOut: common.HexToAddress(op.TokenOut)}
		}
	case "exact_out":
		amounts, err := inputAmounts(req.pool, op.Amounts)
		if err != nil {
			return result{}, err
		}
		in = exit.ExactOutInput{Base: base, AmountsOut: amounts}
	default:
		return result{}, fmt.Errorf("unknown exit kind %q", op.Kind)
	}

	eng, err := exit.New(&exit.Config{Logger: e.logger.With("component", "exit"), Registry: e.registry})
	if err != nil {
		return result{}, err
	}
	q, err := eng.Query(in, req.pool)
	if err != nil {
		return result{}, err
	}
	call, err := eng.BuildCall(exit.BuildInput{Query: q, Slippage: req.slippage, Sender: req.sender, Recipient: req.recipient})
	if err != nil {
		return result{}, err
	}
	return removalResult(q.Kind.String(), q.QueryOutput, call)
}

func removalResult(kind string, q removeliquidity.QueryOutput, call removeliquidity.Call) (result, error) {
	var limits []amountOutput
	var err error
	if q.Kind.ExactIn() {
		limits, err = limitOutputs(q.Tokens, call.MinAmountsOut...)
	} else {
		limits, err = limitOutputs([]token.Token{q.BptIn.Token()}, call.MaxBptIn)
	}
	if err != nil {
		return result{}, err
	}
	return result{
		Kind:       kind,
		AmountsIn:  amountOutputs(q.BptIn),
		AmountsOut: amountOutputs(q.AmountsOut...),
		Limits:     limits,
		Call:       newCallOutput(call.To, call.CallData, call.Value),
	}, nil
}

func (e *env) swap(req request) (result, error) {
	op := req.cfg.Operation
	in := swap.Input{
		ChainID:        req.cfg.ChainID,
		Kind:           swap.GivenIn,
		TokenIn:        common.HexToAddress(op.TokenIn),
		TokenOut:       common.HexToAddress(op.TokenOut),
		UseNativeAsset: op.Native,
	}
	fixed := in.TokenIn
	if op.Kind == "given_out" {
		in.Kind = swap.GivenOut
		fixed = in.TokenOut
	}
	amount, err := inputAmount(req.pool, fixed, op.Amount)
	if err != nil {
		return result{}, err
	}
	in.Amount = amount

	eng, err := swap.New(&swap.Config{Logger: e.logger.With("component", "swap"), Registry: e.registry})
	if err != nil {
		return result{}, err
	}
	q, err := eng.Query(in, req.pool)
	if err != nil {
		return result{}, err
	}
	var deadline *big.Int
	if req.cfg.Deadline > 0 {
		deadline = big.NewInt(req.cfg.Deadline)
	}
	call, err := eng.BuildCall(swap.BuildInput{Query: q, Slippage: req.slippage, Sender: req.sender, Recipient: req.recipient, Deadline: deadline})
	if err != nil {
		return result{}, err
	}

	bounded := q.AmountOut.Token()
	if q.Kind == swap.GivenOut {
		bounded = q.AmountIn.Token()
	}
	limits, err := limitOutputs([]token.Token{bounded}, call.Limit)
	if err != nil {
		return result{}, err
	}
	return result{
		Kind:        q.Kind.String(),
		AmountsIn:   amountOutputs(q.AmountIn),
		AmountsOut:  amountOutputs(q.AmountOut),
		Limits:      limits,
		PriceImpact: e.impact(priceimpact.Swap(in, req.pool)),
		Call:        newCallOutput(call.To, call.CallData, call.Value),
	}, nil
}

// impact formats a price impact estimate. A failed estimate is logged and
// left out of the result; the operation itself already succeeded.
func (e *env) impact(i priceimpact.Impact, err error) string {
	if err != nil {
		e.logger.Warn("Price impact unavailable", "error", err)
		return ""
	}
	return i.String()
}

// inputAmount converts a human amount of one of p's tokens to base units.
func inputAmount(p pools.Pool, addr common.Address, human string) (token.InputAmount, error) {
	i, err := p.TokenIndex(addr)
	if err != nil {
		return token.InputAmount{}, err
	}
	return toInput(p.Tokens()[i].Token, human)
}

func inputAmounts(p pools.Pool, amounts []config.Amount) ([]token.InputAmount, error) {
	out := make([]token.InputAmount, len(amounts))
	for i, a := range amounts {
		in, err := inputAmount(p, common.HexToAddress(a.Token), a.Amount)
		if err != nil {
			return nil, fmt.Errorf("amounts[%d]: %w", i, err)
		}
		out[i] = in
	}
	return out, nil
}

func bptAmount(p pools.Pool, human string) (token.InputAmount, error) {
	return toInput(pools.BptOf(p), human)
}

func toInput(t token.Token, human string) (token.InputAmount, error) {
	a, err := token.FromHuman(t, human)
	if err != nil {
		return token.InputAmount{}, err
	}
	return token.InputAmount{Address: t.Address, Decimals: t.Decimals, RawAmount: a.Raw()}, nil
}
