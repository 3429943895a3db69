package soap

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

const createResponseTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"
 xmlns:wsa="http://www.w3.org/2005/08/addressing">
    <SOAP-ENV:Header>
        <dom0:SubscriptionId xmlns:dom0="http://www.axis.com/2009/event">132</dom0:SubscriptionId>
    </SOAP-ENV:Header>
    <SOAP-ENV:Body>
        <CreatePullPointSubscriptionResponse>
            <SubscriptionReference>
                <wsa:Address>http://192.168.0.90/onvif/services</wsa:Address>
            </SubscriptionReference>
        </CreatePullPointSubscriptionResponse>
    </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

func TestExtractSubscriptionID(t *testing.T) {
	t.Run("single matching element", func(t *testing.T) {
		id, err := ExtractSubscriptionID([]byte(createResponseTemplate))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, id, test.ShouldEqual, "132")
	})

	t.Run("no matching element", func(t *testing.T) {
		body := `<?xml version="1.0"?><Envelope><Body><Nothing>here</Nothing></Body></Envelope>`
		_, err := ExtractSubscriptionID([]byte(body))
		var perr *ProtocolError
		test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "SubscriptionId is not found")
	})

	t.Run("malformed XML", func(t *testing.T) {
		_, err := ExtractSubscriptionID([]byte("not xml at all <"))
		var perr *ProtocolError
		test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
	})

	t.Run("empty element text", func(t *testing.T) {
		body := `<?xml version="1.0"?><Envelope><SubscriptionId></SubscriptionId></Envelope>`
		_, err := ExtractSubscriptionID([]byte(body))
		var perr *ProtocolError
		test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
	})

	t.Run("matches regardless of nesting and namespace", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<Envelope><Body><Deep><Deeper><tns:MySubscriptionIdElement xmlns:tns="urn:x">abc</tns:MySubscriptionIdElement></Deeper></Deep></Body></Envelope>`
		id, err := ExtractSubscriptionID([]byte(body))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, id, test.ShouldEqual, "abc")
	})
}

// Pins the behavior for responses carrying more than one candidate: the last
// element in document order wins.
func TestSubscriptionIDLastMatchWins(t *testing.T) {
	body := `<?xml version="1.0"?>
<Envelope>
    <Header><SubscriptionId>first</SubscriptionId></Header>
    <Body><SubscriptionId>second</SubscriptionId></Body>
</Envelope>`
	id, err := ExtractSubscriptionID([]byte(body))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldEqual, "second")
}

func TestSubscriptionIDPrefersAxisNamespace(t *testing.T) {
	// An element in the Axis event namespace beats a later loose match.
	body := `<?xml version="1.0"?>
<Envelope>
    <Header><dom0:SubscriptionId xmlns:dom0="http://www.axis.com/2009/event">real</dom0:SubscriptionId></Header>
    <Body><EchoedSubscriptionId>echo</EchoedSubscriptionId></Body>
</Envelope>`
	id, err := ExtractSubscriptionID([]byte(body))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldEqual, "real")
}
