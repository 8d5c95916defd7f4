// Copyright 2026, the snptree contributors.

package pipeline

// The platform pin matches the original deployment of this workflow;
// the staphb images are amd64-only.
const dockerPlatform = "linux/amd64"

// Mount maps a host directory into a container.
type Mount struct {
	Host      string
	Container string
}

// dockerCmd assembles a `docker run` invocation that executes tool with
// args inside image, with the given directories mounted.
func dockerCmd(image string, mounts []Mount, tool string, args ...string) ToolCmd {
	dargs := []string{"run", "--rm", "--platform=" + dockerPlatform}
	for _, m := range mounts {
		dargs = append(dargs, "-v", m.Host+":"+m.Container)
	}
	dargs = append(dargs, image, tool)
	dargs = append(dargs, args...)
	return ToolCmd{Tool: tool, Path: "docker", Args: dargs}
}

// DockerAvailable reports whether a docker client responds on this host.
func DockerAvailable(r Runner) bool {
	if _, err := r.LookPath("docker"); err != nil {
		return false
	}
	return r.Run(ToolCmd{Tool: "docker", Path: "docker", Args: []string{"--version"}}) == nil
}
