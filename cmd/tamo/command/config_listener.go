package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"github.com/pixil98/go-tamo/internal/listener"
)

const (
	DefaultListenHost = "127.0.0.1"
	DefaultListenPort = 3333
)

type ListenerType int

const (
	ListenerTypeTcp ListenerType = iota
	ListenerTypeTelnet
	ListenerTypeSSH
	ListenerTypeWebsocket
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tcp", "":
		*lt = ListenerTypeTcp
	case "telnet":
		*lt = ListenerTypeTelnet
	case "ssh":
		*lt = ListenerTypeSSH
	case "websocket":
		*lt = ListenerTypeWebsocket
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

func (lt ListenerType) String() string {
	switch lt {
	case ListenerTypeTcp:
		return "tcp"
	case ListenerTypeTelnet:
		return "telnet"
	case ListenerTypeSSH:
		return "ssh"
	case ListenerTypeWebsocket:
		return "websocket"
	default:
		return fmt.Sprintf("listener(%d)", int(lt))
	}
}

type ListenerConfig struct {
	Protocol    ListenerType `json:"protocol"`
	Host        string       `json:"host,omitempty"`
	Port        uint16       `json:"port,omitempty"`
	HostKeyPath string       `json:"host_key_path,omitempty"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Protocol < ListenerTypeTcp || cl.Protocol > ListenerTypeWebsocket {
		el.Add(fmt.Errorf("unknown listener type: %s", cl.Protocol))
	}
	if cl.HostKeyPath != "" && cl.Protocol != ListenerTypeSSH {
		el.Add(fmt.Errorf("host_key_path is only used by ssh listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) host() string {
	if cl.Host == "" {
		return DefaultListenHost
	}
	return cl.Host
}

func (cl *ListenerConfig) port() uint16 {
	if cl.Port == 0 {
		return DefaultListenPort
	}
	return cl.Port
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTcp:
		return listener.NewTcpListener(cl.host(), cl.port(), cm), nil
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.host(), cl.port(), cm), nil
	case ListenerTypeSSH:
		hostKey, err := listener.LoadHostKey(cl.HostKeyPath)
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(cl.host(), cl.port(), cm, hostKey), nil
	case ListenerTypeWebsocket:
		return listener.NewWebsocketListener(cl.host(), cl.port(), cm), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}
