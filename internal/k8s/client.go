package k8s

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// DefaultPollInterval is how often waits re-check the cluster
const DefaultPollInterval = 2 * time.Second

// Client wraps Kubernetes client-go for easier interaction
type Client struct {
	clientset    kubernetes.Interface
	pollInterval time.Duration
}

// NewClientFromKubeconfig creates a Kubernetes client from kubeconfig bytes
func NewClientFromKubeconfig(kubeconfig []byte) (*Client, error) {
	if len(kubeconfig) == 0 {
		return nil, fmt.Errorf("kubeconfig is empty")
	}

	config, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return NewClientFromClientset(clientset), nil
}

// NewClientFromClientset wraps an existing clientset
func NewClientFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset, pollInterval: DefaultPollInterval}
}

// SetPollInterval changes how often waits re-check the cluster
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

// GetNodes retrieves all nodes in the cluster
func (c *Client) GetNodes(ctx context.Context) ([]*Node, error) {
	nodeList, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nodes := make([]*Node, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		nodes = append(nodes, NodeFromCoreV1(&nodeList.Items[i]))
	}

	return nodes, nil
}

// GetPodsBySelector retrieves the pods in namespace matching a label selector
func (c *Client) GetPodsBySelector(ctx context.Context, namespace, selector string) ([]*Pod, error) {
	if namespace == "" {
		namespace = metav1.NamespaceAll
	}

	podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	pods := make([]*Pod, 0, len(podList.Items))
	for i := range podList.Items {
		pods = append(pods, PodFromCoreV1(&podList.Items[i]))
	}

	return pods, nil
}

// GetDaemonSetStatus returns the rollout counters of a DaemonSet
func (c *Client) GetDaemonSetStatus(ctx context.Context, namespace, name string) (*DaemonSetStatus, error) {
	ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get daemonset %s/%s: %w", namespace, name, err)
	}

	return &DaemonSetStatus{
		Name:      ds.Name,
		Namespace: ds.Namespace,
		Desired:   ds.Status.DesiredNumberScheduled,
		Ready:     ds.Status.NumberReady,
		Available: ds.Status.NumberAvailable,
	}, nil
}

// GetDeploymentStatus returns the rollout counters of a Deployment
func (c *Client) GetDeploymentStatus(ctx context.Context, namespace, name string) (*DeploymentStatus, error) {
	deploy, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	replicas := int32(1)
	if deploy.Spec.Replicas != nil {
		replicas = *deploy.Spec.Replicas
	}

	return &DeploymentStatus{
		Name:      deploy.Name,
		Namespace: deploy.Namespace,
		Replicas:  replicas,
		Ready:     deploy.Status.ReadyReplicas,
		Available: deploy.Status.AvailableReplicas,
	}, nil
}

// WaitForPodsReady waits until at least one pod matches selector and every
// matching pod is Ready
func (c *Client) WaitForPodsReady(ctx context.Context, namespace, selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := c.pollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	state := "no pods found"
	for {
		pods, err := c.GetPodsBySelector(ctx, namespace, selector)
		if err == nil {
			ready, desc := allReady(pods)
			if ready {
				return nil
			}
			state = desc
		} else {
			state = err.Error()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout after %s waiting for pods %q in %s to be ready (%s): %w", timeout, selector, namespace, state, ctx.Err())
		case <-ticker.C:
		}
	}
}

// allReady reports whether pods is non-empty and all pods are ready
func allReady(pods []*Pod) (bool, string) {
	if len(pods) == 0 {
		return false, "no pods found"
	}

	ready := 0
	var pending []string
	for _, pod := range pods {
		if pod.Ready {
			ready++
			continue
		}
		pending = append(pending, fmt.Sprintf("%s %s", pod.Name, pod.State()))
	}

	desc := fmt.Sprintf("%d/%d ready", ready, len(pods))
	if len(pending) > 0 {
		desc += ": " + strings.Join(pending, ", ")
	}
	return ready == len(pods), desc
}

// IsNotFound reports whether err is the API's not-found error
func IsNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}
