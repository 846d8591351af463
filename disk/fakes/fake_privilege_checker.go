package fakes

type FakePrivilegeChecker struct {
	Elevated  bool
	CallCount int
}

func (c *FakePrivilegeChecker) HasElevatedPrivilege() bool {
	c.CallCount++
	return c.Elevated
}
