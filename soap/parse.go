package soap

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// SubscriptionIDNamespace is the Axis event namespace that qualifies the
// SubscriptionId element in a CreatePullPointSubscriptionResponse.
const SubscriptionIDNamespace = "http://www.axis.com/2009/event"

const subscriptionIDLocalName = "SubscriptionId"

// ProtocolError reports a well-formed HTTP response that lacked an expected
// protocol element.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ExtractSubscriptionID pulls the subscription id out of a
// CreatePullPointSubscriptionResponse body.
//
// Lookup order: elements named SubscriptionId in the Axis event namespace are
// preferred; failing that, any element whose local name contains
// "subscriptionid" case-insensitively is considered. Within the winning tier
// the last element in document order is taken, so an id echoed in a response
// header never shadows the one in the body.
func ExtractSubscriptionID(body []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", &ProtocolError{Reason: "response is not well-formed XML", Err: err}
	}
	root := doc.Root()
	if root == nil {
		return "", &ProtocolError{Reason: "response has no root element"}
	}

	var exact, loose *etree.Element
	walk(root, func(el *etree.Element) {
		if el.NamespaceURI() == SubscriptionIDNamespace && el.Tag == subscriptionIDLocalName {
			exact = el
		}
		if strings.Contains(strings.ToLower(el.Tag), strings.ToLower(subscriptionIDLocalName)) {
			loose = el
		}
	})

	match := exact
	if match == nil {
		match = loose
	}
	if match == nil {
		return "", &ProtocolError{Reason: "SubscriptionId is not found in response"}
	}
	id := match.Text()
	if id == "" {
		return "", &ProtocolError{Reason: "SubscriptionId element is empty"}
	}
	return id, nil
}

// walk visits el and its descendants in document order.
func walk(el *etree.Element, visit func(*etree.Element)) {
	visit(el)
	for _, child := range el.ChildElements() {
		walk(child, visit)
	}
}
