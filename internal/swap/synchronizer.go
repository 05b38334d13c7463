package swap

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/paaavkata/crypto-market-dashboard/pkg/models"
	"github.com/paaavkata/crypto-market-dashboard/pkg/utils"
)

const amountPlaces = 6

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

var (
	ErrInvalidAmountInput = errors.New("amount must be a non-negative decimal")
	ErrInvalidAmount      = errors.New("please enter a valid amount to swap")
	ErrSameAsset          = errors.New("cannot swap the same cryptocurrency")
	ErrQuoteUnavailable   = errors.New("exchange rate unavailable for the selected assets")
)

// ValidationTitle is the notification title for an Execute failure.
func ValidationTitle(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "Invalid amount"
	case errors.Is(err, ErrSameAsset):
		return "Same currencies"
	case errors.Is(err, ErrQuoteUnavailable):
		return "Quote unavailable"
	default:
		return "Error"
	}
}

// ValidationMessage is the user-facing text for an Execute failure.
func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "Please enter a valid amount to swap"
	case errors.Is(err, ErrSameAsset):
		return "Cannot swap the same cryptocurrency"
	case errors.Is(err, ErrQuoteUnavailable):
		return "Exchange rate unavailable for the selected assets"
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}

type Quote struct {
	FromID        string  `json:"fromId"`
	ToID          string  `json:"toId"`
	FromSymbol    string  `json:"fromSymbol,omitempty"`
	ToSymbol      string  `json:"toSymbol,omitempty"`
	FromAmount    string  `json:"fromAmount"`
	ToAmount      string  `json:"toAmount"`
	Rate          float64 `json:"rate"`
	RateAvailable bool    `json:"rateAvailable"`
	RateLabel     string  `json:"rateLabel,omitempty"`
}

type Confirmation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Synchronizer keeps the derived rate and output amount consistent with the
// selected pair, the typed amount and the price table. It is not safe for
// concurrent use; the owning screen serializes access.
type Synchronizer struct {
	fromID     string
	toID       string
	amountText string
	prices     []models.Coin

	rate          decimal.Decimal
	rateAvailable bool
	toAmountText  string

	onChange func(Quote)
}

func NewSynchronizer(fromID, toID, amountText string) *Synchronizer {
	s := &Synchronizer{
		fromID: fromID,
		toID:   toID,
	}
	if amountPattern.MatchString(amountText) {
		s.amountText = amountText
	}
	s.recompute()
	return s
}

// OnChange registers a callback invoked once per recomputation.
func (s *Synchronizer) OnChange(fn func(Quote)) {
	s.onChange = fn
}

// SetPrices replaces the whole price table.
func (s *Synchronizer) SetPrices(coins []models.Coin) {
	s.prices = coins
	s.recompute()
}

func (s *Synchronizer) Prices() []models.Coin {
	return s.prices
}

func (s *Synchronizer) SetFrom(id string) {
	if id == s.fromID {
		return
	}
	s.fromID = id
	s.recompute()
}

func (s *Synchronizer) SetTo(id string) {
	if id == s.toID {
		return
	}
	s.toID = id
	s.recompute()
}

// SetPair updates both sides with a single recomputation.
func (s *Synchronizer) SetPair(fromID, toID string) {
	if fromID == s.fromID && toID == s.toID {
		return
	}
	s.fromID, s.toID = fromID, toID
	s.recompute()
}

// SetAmount accepts partially typed input such as "1."; anything else is
// rejected and the previous amount is kept.
func (s *Synchronizer) SetAmount(text string) error {
	if !amountPattern.MatchString(text) {
		return fmt.Errorf("%w: %q", ErrInvalidAmountInput, text)
	}
	if text == s.amountText {
		return nil
	}
	s.amountText = text
	s.recompute()
	return nil
}

// Flip exchanges the from and to assets.
func (s *Synchronizer) Flip() {
	s.fromID, s.toID = s.toID, s.fromID
	s.recompute()
}

func (s *Synchronizer) Quote() Quote {
	q := Quote{
		FromID:        s.fromID,
		ToID:          s.toID,
		FromAmount:    s.amountText,
		ToAmount:      s.toAmountText,
		Rate:          utils.DecimalToFloat(s.rate),
		RateAvailable: s.rateAvailable,
	}

	from, fromOK := models.FindCoin(s.prices, s.fromID)
	to, toOK := models.FindCoin(s.prices, s.toID)
	if fromOK {
		q.FromSymbol = from.Symbol
	}
	if toOK {
		q.ToSymbol = to.Symbol
	}
	if s.rateAvailable && s.rate.IsPositive() && s.fromID != s.toID {
		q.RateLabel = fmt.Sprintf("1 %s ≈ %s %s", q.FromSymbol, utils.FormatRate(q.Rate), q.ToSymbol)
	}

	return q
}

// Execute simulates the swap. Nothing is mutated on success.
func (s *Synchronizer) Execute() (Confirmation, error) {
	amount, err := utils.ParseDecimalInput(s.amountText)
	if s.amountText == "" || err != nil || !amount.IsPositive() {
		return Confirmation{}, ErrInvalidAmount
	}

	if s.fromID == s.toID {
		return Confirmation{}, ErrSameAsset
	}

	from, fromOK := models.FindCoin(s.prices, s.fromID)
	to, toOK := models.FindCoin(s.prices, s.toID)
	if !fromOK || !toOK || !s.rateAvailable {
		return Confirmation{}, ErrQuoteUnavailable
	}

	return Confirmation{
		Title:   "Swap Simulated",
		Message: fmt.Sprintf("Swapped %s %s to %s %s", s.amountText, from.Symbol, s.toAmountText, to.Symbol),
	}, nil
}

func (s *Synchronizer) recompute() {
	s.rate, s.rateAvailable = s.exchangeRate()
	s.toAmountText = s.outputAmount()

	if s.onChange != nil {
		s.onChange(s.Quote())
	}
}

// exchangeRate reports an unavailable rate rather than holding a stale one
// when either side cannot be priced.
func (s *Synchronizer) exchangeRate() (decimal.Decimal, bool) {
	from, fromOK := models.FindCoin(s.prices, s.fromID)
	to, toOK := models.FindCoin(s.prices, s.toID)
	if !fromOK || !toOK {
		return decimal.Zero, false
	}
	if !utils.IsFinite(from.Price) || !utils.IsFinite(to.Price) || from.Price <= 0 || to.Price < 0 {
		return decimal.Zero, false
	}

	return utils.FloatToDecimal(to.Price).Div(utils.FloatToDecimal(from.Price)), true
}

func (s *Synchronizer) outputAmount() string {
	// Nothing typed yet, or only a decimal point.
	if !s.rateAvailable || s.amountText == "" || s.amountText == "." {
		return ""
	}

	amount, err := utils.ParseDecimalInput(s.amountText)
	if err != nil {
		return ""
	}

	return utils.DecimalToString(amount.Mul(s.rate), amountPlaces)
}
