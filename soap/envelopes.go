// Package soap builds and parses the SOAP envelopes exchanged with the ONVIF
// event service of an Axis device.
package soap

import (
	"errors"
	"fmt"
	"strings"
)

// Envelope is a complete SOAP 1.2 request body, ready to POST.
type Envelope string

func (e Envelope) String() string {
	return string(e)
}

const getEventPropertiesEnvelope = Envelope(`<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope
 xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"
 xmlns:wsa="http://www.w3.org/2005/08/addressing"
 xmlns:tet="http://www.onvif.org/ver10/events/wsdl">
    <SOAP-ENV:Header>
        <wsa:Action>
http://www.onvif.org/ver10/events/wsdl/EventPortType/GetEventPropertiesRequest
 </wsa:Action>
    </SOAP-ENV:Header>
    <SOAP-ENV:Body>
        <tet:GetEventProperties>
 </tet:GetEventProperties>
    </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`)

// The subscription filter is the concrete-topic-set expression //. which
// matches every topic the device declares. A narrower expression such as
// tns1:Monitoring/ProcessorUsage would also be accepted by the device.
const createPullPointSubscriptionEnvelope = Envelope(`<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope
 xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"
 xmlns:wsa="http://www.w3.org/2005/08/addressing"
 xmlns:tet="http://www.onvif.org/ver10/events/wsdl"
 xmlns:tns1="http://www.onvif.org/ver10/topics"
 xmlns:wsnt="http://docs.oasis-open.org/wsn/b-2">
    <SOAP-ENV:Header>
        <wsa:Action>
http://www.onvif.org/ver10/events/wsdl/EventPortType/CreatePullPointSubscriptionRequest
</wsa:Action>
    </SOAP-ENV:Header>
    <SOAP-ENV:Body>
        <tet:CreatePullPointSubscription>
        <tet:Filter>
<wsnt:TopicExpression Dialect="http://www.onvif.org/ver10/tev/topicExpression/ConcreteSet">//.</wsnt:TopicExpression>
</tet:Filter>
</tet:CreatePullPointSubscription>
    </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`)

// The %s placeholder receives the subscription id returned by
// CreatePullPointSubscription. Timeout and MessageLimit bound a single pull on
// the device side and are unrelated to the HTTP timeout or the session's wait.
const pullMessagesEnvelope = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope
 xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"
 xmlns:wsa="http://www.w3.org/2005/08/addressing"
 xmlns:tet="http://www.onvif.org/ver10/events/wsdl">
    <SOAP-ENV:Header>
        <wsa:Action>
http://www.onvif.org/ver10/events/wsdl/PullPointSubscription/PullMessagesRequest
 </wsa:Action>
        <wsa:To>http://192.168.0.90/onvif/services</wsa:To>
        <dom0:SubscriptionId xmlns:dom0="http://www.axis.com/2009/event">%s</dom0:SubscriptionId>
    </SOAP-ENV:Header>
    <SOAP-ENV:Body>
        <tet:PullMessages>
            <tet:Timeout>PT5S</tet:Timeout>
            <tet:MessageLimit>1000</tet:MessageLimit>
        </tet:PullMessages>
    </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

// GetEventProperties returns the GetEventPropertiesRequest envelope. The text
// is identical on every call.
func GetEventProperties() Envelope {
	return getEventPropertiesEnvelope
}

// CreatePullPointSubscription returns the CreatePullPointSubscriptionRequest
// envelope with the catch-all topic filter.
func CreatePullPointSubscription() Envelope {
	return createPullPointSubscriptionEnvelope
}

// PullMessages returns a PullMessagesRequest envelope for the given
// subscription id. The id is embedded verbatim as element text.
func PullMessages(subscriptionID string) (Envelope, error) {
	var zero Envelope
	if strings.TrimSpace(subscriptionID) == "" {
		return zero, errors.New("cannot build PullMessages request without a subscription id")
	}
	return Envelope(fmt.Sprintf(pullMessagesEnvelope, subscriptionID)), nil
}
