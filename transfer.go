package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Transferrer copies local files to the dashboard host with scp, feeding
// the password through sshpass so it never appears in the process list.
type Transferrer struct {
	Logger
	Runner
	Remote RemoteSettings
}

// Push copies files to remotePath on the dashboard host. Legacy selects the
// SCP protocol instead of SFTP, which the host requires for single files.
func (t Transferrer) Push(ctx context.Context, files []string, remotePath string, legacy bool) error {
	if len(files) == 0 {
		return fmt.Errorf("nothing to push to %s", remotePath)
	}
	if err := requireSettings(map[string]string{
		"ninja.username": t.Remote.Username,
		"ninja.password": t.Remote.Password,
	}); err != nil {
		return err
	}

	args := []string{"-e", "scp"}
	if legacy {
		args = append(args, "-O")
	}
	args = append(args, "-P", strconv.Itoa(t.Remote.Port))
	args = append(args, files...)
	args = append(args, fmt.Sprintf("%s@%s:%s", t.Remote.Username, t.Remote.Host, remotePath))

	_, err := t.RunCommand(ctx, []string{"SSHPASS=" + t.Remote.Password}, "sshpass", args)
	if err != nil {
		return errors.Wrapf(err, "unable to push to %s", remotePath)
	}

	t.Debugf("pushed %v to %s", files, remotePath)
	return nil
}
