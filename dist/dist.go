package dist

import "fmt"

// MessageType is the operation code of a control message, the first
// element of the control tuple.
type MessageType int32

const (
	// control message operations are defined here https://erlang.org/doc/apps/erts/erl_dist_protocol.html#control-messages
	LINK         MessageType = 1
	SEND         MessageType = 2
	EXIT         MessageType = 3
	UNLINK       MessageType = 4
	NODE_LINK    MessageType = 5
	REG_SEND     MessageType = 6
	GROUP_LEADER MessageType = 7
	EXIT2        MessageType = 8
	SEND_TT      MessageType = 12
	EXIT_TT      MessageType = 13
	REG_SEND_TT  MessageType = 16
	EXIT2_TT     MessageType = 18
)

var messageTypeNames = map[MessageType]string{
	LINK:         "LINK",
	SEND:         "SEND",
	EXIT:         "EXIT",
	UNLINK:       "UNLINK",
	NODE_LINK:    "NODE_LINK",
	REG_SEND:     "REG_SEND",
	GROUP_LEADER: "GROUP_LEADER",
	EXIT2:        "EXIT2",
	SEND_TT:      "SEND_TT",
	EXIT_TT:      "EXIT_TT",
	REG_SEND_TT:  "REG_SEND_TT",
	EXIT2_TT:     "EXIT2_TT",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// Known reports whether t is one of the supported operations.
func (t MessageType) Known() bool {
	_, ok := messageTypeNames[t]
	return ok
}

const (
	// distribution header tag
	protoDist = 'D'
)
