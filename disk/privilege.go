package disk

import (
	"strings"

	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const elevationQuery = "([Security.Principal.WindowsPrincipal][Security.Principal.WindowsIdentity]::GetCurrent()).IsInRole([Security.Principal.WindowsBuiltInRole]::Administrator)"

type PrivilegeChecker interface {
	HasElevatedPrivilege() bool
}

// WindowsPrivilegeChecker asks powershell whether the current token is in
// the Administrators role. Any failure to answer counts as not elevated.
type WindowsPrivilegeChecker struct {
	Runner boshsys.CmdRunner
}

func NewWindowsPrivilegeChecker(runner boshsys.CmdRunner) *WindowsPrivilegeChecker {
	return &WindowsPrivilegeChecker{Runner: runner}
}

func (c *WindowsPrivilegeChecker) HasElevatedPrivilege() bool {
	stdout, _, exitStatus, err := c.Runner.RunCommand(powershellExecutable, elevationQuery)
	if err != nil || exitStatus != 0 {
		return false
	}
	return strings.TrimSpace(stdout) == "True"
}
