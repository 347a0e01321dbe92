package versioncmder

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Version Command", func() {
	It("prints the build version and default model", func() {
		var out bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(nil)

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("visorx dev"))
		Expect(out.String()).To(ContainSubstring("gemini-2.5-flash"))
	})
})
