package internal_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/DrGermanius/Glonni/internal"
	"github.com/DrGermanius/Glonni/internal/toast"
)

var _ = Describe("Scheduler", func() {
	It("rejects a bad schedule", func() {
		admin := internal.NewAdminService(newStores(), nopLogger())

		_, err := internal.NewScheduler("every now and then", admin, toast.New(time.Second), nopLogger())
		Expect(err).Should(HaveOccurred())
	})
	It("starts and stops", func() {
		admin := internal.NewAdminService(newStores(), nopLogger())

		s, err := internal.NewScheduler("@hourly", admin, toast.New(time.Second), nopLogger())
		Expect(err).ShouldNot(HaveOccurred())
		s.Start()
		s.Stop()
	})
})
