package notification

import "fmt"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelPush     Channel = "push"
	ChannelInApp    Channel = "in_app"
	ChannelWhatsApp Channel = "whatsapp"
)

var channels = []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp, ChannelWhatsApp}

func ParseChannel(s string) (Channel, error) {
	for _, c := range channels {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported channel %q", s)
}

func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

func (c Channel) String() string {
	return string(c)
}
