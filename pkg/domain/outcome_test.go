package domain_test

import (
	"testing"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ea   domain.EAStatus
		ms   domain.MSStatus
		want domain.Classification
	}{
		{
			name: "linked and available",
			ea:   domain.EAStatusLinked,
			ms:   domain.MSStatusAvailable,
			want: domain.ClassificationAvailable,
		},
		{
			name: "linked and taken",
			ea:   domain.EAStatusLinked,
			ms:   domain.MSStatusTaken,
			want: domain.ClassificationTaken,
		},
		{
			name: "linked but microsoft indeterminate",
			ea:   domain.EAStatusLinked,
			ms:   domain.MSStatusIndeterminate,
			want: domain.ClassificationUnavailable,
		},
		{
			name: "not linked, microsoft skipped",
			ea:   domain.EAStatusNotLinked,
			ms:   "",
			want: domain.ClassificationUnavailable,
		},
		{
			name: "ea indeterminate, microsoft skipped",
			ea:   domain.EAStatusIndeterminate,
			ms:   "",
			want: domain.ClassificationUnavailable,
		},
		{
			name: "not linked never upgrades on stale microsoft verdict",
			ea:   domain.EAStatusNotLinked,
			ms:   domain.MSStatusAvailable,
			want: domain.ClassificationUnavailable,
		},
		{
			name: "linked with zero microsoft verdict",
			ea:   domain.EAStatusLinked,
			ms:   "",
			want: domain.ClassificationUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, domain.Classify(tc.ea, tc.ms))
			// classification is a pure function of the two verdicts
			require.Equal(t, tc.want, domain.Classify(tc.ea, tc.ms))
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	f, err := domain.ParseOutputFormat("json")
	require.NoError(t, err)
	require.Equal(t, domain.FormatJSON, f)

	f, err = domain.ParseOutputFormat("txt")
	require.NoError(t, err)
	require.Equal(t, domain.FormatText, f)

	_, err = domain.ParseOutputFormat("csv")
	require.Error(t, err)

	_, err = domain.ParseOutputFormat("")
	require.Error(t, err)
}
