package cilium

import (
	"github.com/blang/semver/v4"
	"helm.sh/helm/v3/pkg/chartutil"
)

// legacyValuesRemovedIn is the first chart release that no longer reads
// kubeProxyReplacement=partial or the per-feature service toggles
var legacyValuesRemovedIn = semver.MustParse("1.15.0")

// LegacyValuesIgnored reports whether chart version no longer honours the
// kube-proxy values in fixedValues. Unparseable versions report false.
func LegacyValuesIgnored(version string) bool {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return false
	}
	v.Pre = nil
	return v.GTE(legacyValuesRemovedIn)
}

// fixedValues are the chart values devcluster always sets
func fixedValues() map[string]interface{} {
	return map[string]interface{}{
		"kubeProxyReplacement": "partial",
		"hostServices": map[string]interface{}{
			"enabled": false,
		},
		"externalIPs": map[string]interface{}{
			"enabled": true,
		},
		"nodePort": map[string]interface{}{
			"enabled": true,
		},
		"hostPort": map[string]interface{}{
			"enabled": true,
		},
		"bpf": map[string]interface{}{
			"masquerade": false,
		},
		"image": map[string]interface{}{
			"pullPolicy": "IfNotPresent",
		},
		"ipam": map[string]interface{}{
			"mode": "kubernetes",
		},
	}
}

// BuildValues merges user values underneath the fixed values.
// A user value never overrides a fixed one.
func BuildValues(user map[string]interface{}) map[string]interface{} {
	values := fixedValues()
	if len(user) == 0 {
		return values
	}
	return chartutil.CoalesceTables(values, copyTable(user))
}

// copyTable deep-copies nested maps so merging never mutates the caller's config
func copyTable(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]interface{}); ok {
			dst[k] = copyTable(m)
			continue
		}
		dst[k] = v
	}
	return dst
}
