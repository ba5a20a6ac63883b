package packet

// Command is a text command typed by an operator (serverbound 0x01).
type Command struct {
	Line string `mc:"string"`
}

func (Command) PacketID() int32 { return 0x01 }

// Message is a reply line sent back to the operator (clientbound 0x02).
type Message struct {
	Text  string `mc:"string"`
	Error bool   `mc:"bool"`
}

func (Message) PacketID() int32 { return 0x02 }

// TabComplete asks for completions of a partial command line (serverbound 0x03).
type TabComplete struct {
	Text string `mc:"string"`
}

func (TabComplete) PacketID() int32 { return 0x03 }

// TabCompleteResponse carries the completions: varint count followed by
// that many strings (clientbound 0x04).
type TabCompleteResponse struct {
	Data []byte `mc:"rest"`
}

func (TabCompleteResponse) PacketID() int32 { return 0x04 }
