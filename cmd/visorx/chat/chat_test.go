package chatcmder

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/visorx/pkg/config"
)

var _ = Describe("Chat Command", func() {
	It("refuses to run without a terminal", func() {
		cmd := NewChatCmd()
		cmd.SetArgs([]string{"--mock"})
		cmd.SetIn(&bytes.Buffer{})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)

		err := cmd.ExecuteContext(context.Background())
		Expect(err).To(MatchError(ErrNotTerminal))
	})

	It("discards logs when no log file is configured", func() {
		log, closeLog, err := fileLogger(config.Default())
		Expect(err).NotTo(HaveOccurred())
		defer closeLog()
		Expect(log.Core().Enabled(0)).To(BeFalse())
	})

	It("appends logs to the configured file", func() {
		tmpDir, err := os.MkdirTemp("", "visorx-chat-test-*")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(tmpDir)

		cfg := config.Default()
		cfg.LogFile = filepath.Join(tmpDir, "visorx.log")

		log, closeLog, err := fileLogger(cfg)
		Expect(err).NotTo(HaveOccurred())
		log.Info("terminal session started")
		closeLog()

		Expect(cfg.LogFile).To(BeAnExistingFile())
	})
})
