package k8s

import (
	corev1 "k8s.io/api/core/v1"
)

// Node is the subset of a Kubernetes node devcluster reports on
type Node struct {
	Name    string
	Status  string
	Ready   bool
	Roles   []string
	Version string
}

// Pod is the subset of a pod needed to judge readiness
type Pod struct {
	Name      string
	Namespace string
	Phase     corev1.PodPhase
	Ready     bool
	// Reason is the first container waiting reason, such as ImagePullBackOff
	Reason string
}

// State returns the waiting reason when there is one, otherwise the phase
func (p *Pod) State() string {
	if p.Reason != "" {
		return p.Reason
	}
	return string(p.Phase)
}

// DaemonSetStatus summarizes the rollout of a DaemonSet
type DaemonSetStatus struct {
	Name      string
	Namespace string
	Desired   int32
	Ready     int32
	Available int32
}

// Healthy reports whether at least one pod is scheduled and all scheduled pods are ready
func (s *DaemonSetStatus) Healthy() bool {
	return s.Desired > 0 && s.Ready == s.Desired
}

// DeploymentStatus summarizes the rollout of a Deployment
type DeploymentStatus struct {
	Name      string
	Namespace string
	Replicas  int32
	Ready     int32
	Available int32
}

// Healthy reports whether every desired replica is available
func (s *DeploymentStatus) Healthy() bool {
	return s.Replicas > 0 && s.Available == s.Replicas
}

// NodeFromCoreV1 converts a core/v1 Node
func NodeFromCoreV1(node *corev1.Node) *Node {
	n := &Node{
		Name:    node.Name,
		Version: node.Status.NodeInfo.KubeletVersion,
		Roles:   extractNodeRoles(node),
		Status:  "NotReady",
	}

	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
			n.Status = "Ready"
			n.Ready = true
		}
	}

	return n
}

// extractNodeRoles extracts node roles from labels
func extractNodeRoles(node *corev1.Node) []string {
	roles := []string{}

	for label := range node.Labels {
		switch label {
		case "node-role.kubernetes.io/master",
			"node-role.kubernetes.io/control-plane":
			roles = append(roles, "control-plane")
		case "node-role.kubernetes.io/worker":
			roles = append(roles, "worker")
		}
	}

	// Kind workers carry no role label
	if len(roles) == 0 {
		roles = append(roles, "worker")
	}

	return roles
}

// PodFromCoreV1 converts a core/v1 Pod
func PodFromCoreV1(pod *corev1.Pod) *Pod {
	p := &Pod{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Phase:     pod.Status.Phase,
		Ready:     isPodReady(pod),
	}

	for _, cs := range append(pod.Status.InitContainerStatuses, pod.Status.ContainerStatuses...) {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			p.Reason = cs.State.Waiting.Reason
			break
		}
	}

	return p
}

// isPodReady checks the pod's Ready condition
func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
