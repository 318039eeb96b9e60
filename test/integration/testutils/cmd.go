package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var multiSpaceRegex = regexp.MustCompile(" +")

// RunBlendeval executes a blendeval command with the given arguments string (split by spaces).
func RunBlendeval(ctx context.Context, env []string, binary, cmdArgs string, nolog bool) (stdout, stderr []byte, err error) {
	cmdArgs = strings.TrimSpace(cmdArgs)
	cmdArgs = multiSpaceRegex.ReplaceAllString(cmdArgs, " ")

	var args []string
	if cmdArgs != "" {
		args = strings.Split(cmdArgs, " ")
	}

	cmd := newCmd(ctx, env, binary, args, nolog)
	var outData, errData bytes.Buffer
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}

// StartBlendeval starts a long running blendeval command (e.g. serve), the
// returned command is killed when the context ends.
func StartBlendeval(ctx context.Context, env []string, binary string, args []string, nolog bool) (*exec.Cmd, error) {
	cmd := newCmd(ctx, env, binary, args, nolog)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func newCmd(ctx context.Context, env []string, binary string, args []string, nolog bool) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binary, args...)

	// Custom env overrides the process env, last key wins.
	newEnv := append([]string{}, os.Environ()...)
	newEnv = append(newEnv, env...)
	if nolog {
		newEnv = append(newEnv, "BLENDEVAL_NO_LOG=true")
	}
	cmd.Env = newEnv

	return cmd
}
