package lens

import (
	"github.com/sirupsen/logrus"

	"github.com/daccred/txlens.attest.so/models"
)

// Host markers bounding a nested contract invocation in a diagnostic trace.
const (
	topicFnCall   = "fn_call"
	topicFnReturn = "fn_return"
)

// CallTreeBuilder reconstructs the nested invocation structure from a flat,
// emission-ordered diagnostic event stream.
type CallTreeBuilder struct {
	logger *logrus.Entry
}

func NewCallTreeBuilder(logger *logrus.Entry) *CallTreeBuilder {
	return &CallTreeBuilder{logger: logger}
}

// Build runs a single linear pass over the events with an explicit call
// stack. A call marker opens a frame at depth = current stack size; a return
// marker pops the top frame and attaches its payload as the return value.
// Returns must be matched by stack position: when calls nest, returns do not
// arrive in call-issue order, so LIFO popping is the only correct pairing.
// Any other event attaches to its innermost active caller. invoker names the
// account that issued the root call(s).
func (b *CallTreeBuilder) Build(events []models.RawEvent, invoker string) []*models.Invocation {
	var roots []*models.Invocation
	var stack []*models.Invocation

	for _, ev := range events {
		switch marker(ev) {
		case topicFnCall:
			inv := &models.Invocation{
				Depth:        len(stack),
				ContractID:   callTarget(ev),
				FunctionName: callFunction(ev),
				Parameters:   decodeParameters(ev.Data),
			}
			if len(stack) == 0 {
				inv.Invoker = invoker
				inv.InvokerKind = models.InvokerAccount
				roots = append(roots, inv)
			} else {
				parent := stack[len(stack)-1]
				inv.Invoker = parent.ContractID
				inv.InvokerKind = models.InvokerContract
				parent.Children = append(parent.Children, inv)
			}
			stack = append(stack, inv)

		case topicFnReturn:
			if len(stack) == 0 {
				// Orphan return in a malformed trace.
				b.logger.Debug("dropping return marker with no open frame")
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			rv := Decode(ev.Data)
			top.ReturnValue = &rv

		default:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Events = append(top.Events, ev)
			}
		}
	}

	if len(stack) > 0 {
		// Unterminated frames stay in the tree without return values.
		b.logger.WithField("open_frames", len(stack)).Debug("diagnostic trace ended with open call frames")
	}
	return roots
}

// marker returns the host marker name when the event's first topic is one,
// empty otherwise.
func marker(ev models.RawEvent) string {
	if len(ev.Topics) == 0 {
		return ""
	}
	first := Decode(ev.Topics[0])
	if first.Kind != ValueText {
		return ""
	}
	switch first.Display {
	case topicFnCall, topicFnReturn:
		return first.Display
	}
	return ""
}

// callTarget decodes the called contract id from a call marker's second
// topic, falling back to the event's own contract id.
func callTarget(ev models.RawEvent) string {
	if len(ev.Topics) > 1 {
		if target := Decode(ev.Topics[1]); target.Kind == ValueAddress || target.Display != "" {
			return target.Display
		}
	}
	return ev.ContractID
}

func callFunction(ev models.RawEvent) string {
	if len(ev.Topics) > 2 {
		return Decode(ev.Topics[2]).Display
	}
	return ""
}

func decodeParameters(data any) []models.DecodedValue {
	switch v := data.(type) {
	case nil:
		return nil
	case []any:
		out := make([]models.DecodedValue, len(v))
		for i, item := range v {
			out[i] = Decode(item)
		}
		return out
	default:
		return []models.DecodedValue{Decode(v)}
	}
}
