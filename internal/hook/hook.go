// Package hook fires the configured file-received shell command without
// blocking the receiver's exit path.
package hook

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"strconv"
	"time"
)

const timeout = 10 * time.Second

// Run spawns `sh -c <cmd> <senderID> <filename> <payloadSize>` and logs the
// outcome. It never returns an error to the caller: hook failures are
// logged at WARN only and must not affect the transfer's own exit code.
// Call it in its own goroutine to keep it fire-and-forget.
func Run(cmd, senderID, filename string, payloadSize int64) {
	if cmd == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := exec.CommandContext(ctx, "sh", "-c", cmd, "sh", senderID, filename, strconv.FormatInt(payloadSize, 10))
	var out, errOut bytes.Buffer
	c.Stdout = &out
	c.Stderr = &errOut

	err := c.Run()
	if ctx.Err() == context.DeadlineExceeded {
		log.Printf("WARN: file-received hook timed out after %s: %s", timeout, cmd)
		return
	}
	if err != nil {
		log.Printf("WARN: file-received hook exited with error: %v (stderr: %s)", err, errOut.String())
		return
	}
	log.Printf("file-received hook completed: %q", out.String())
}
