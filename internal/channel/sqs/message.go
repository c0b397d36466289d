package sqs

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type message struct {
	id       string
	dedupKey string
	receipt  string
	body     []byte
}

func newMessage(msg types.Message) message {
	return message{
		id:       aws.ToString(msg.MessageId),
		dedupKey: msg.Attributes[string(types.MessageSystemAttributeNameMessageDeduplicationId)],
		receipt:  aws.ToString(msg.ReceiptHandle),
		body:     []byte(aws.ToString(msg.Body)),
	}
}

func (m message) ID() string {
	return m.id
}

func (m message) DedupKey() string {
	return m.dedupKey
}

func (m message) Body() []byte {
	return m.body
}

func (m message) Receipt() string {
	return m.receipt
}
