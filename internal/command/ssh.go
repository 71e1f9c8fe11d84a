package command

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// SSHRunner executes commands on a remote host over an SSH connection.
// One session is opened per command; the connection is reused.
type SSHRunner struct {
	client *ssh.Client
	addr   string
}

// DialSSH connects to addr (host or host:port) as user, authenticating
// with the private key file when given.
func DialSSH(addr, user, keyFile string) (*SSHRunner, error) {
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, "22")
	}

	var auths []ssh.AuthMethod
	if keyFile != "" {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading ssh key %s: %w", keyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing ssh key %s: %w", keyFile, err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}

	log.WithField("addr", addr).Debug("ssh connection established")
	return &SSHRunner{client: client, addr: addr}, nil
}

func (r *SSHRunner) Close() error {
	return r.client.Close()
}

func (r *SSHRunner) Run(name string, args ...string) Result {
	session, err := r.client.NewSession()
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("ssh session on %s: %w", r.addr, err)}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	cmdline := shellJoin(name, args)
	err = session.Run(cmdline)
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitStatus()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}

	log.WithFields(log.Fields{
		"addr":    r.addr,
		"command": cmdline,
		"exit":    res.ExitCode,
	}).Debug("ran remote command")
	return res
}

func (r *SSHRunner) CheckOutput(name string, args ...string) (string, error) {
	res := r.Run(name, args...)
	if res.Err != nil {
		return "", res.Err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with status %d on %s: %s",
			name, res.ExitCode, r.addr, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// shellJoin builds a command line for the remote shell, quoting
// arguments that contain shell metacharacters.
func shellJoin(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t$&|;<>()*?!\"'`\\") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
