package page

// robotsPolicy keeps crawlers off the operational endpoints.
const robotsPolicy = `User-agent: *
Disallow: /healthz
Disallow: /readyz
Disallow: /metrics
Allow: /
`

// Robots returns the fixed robots policy.
func (c *Compiler) Robots() []byte {
	return []byte(robotsPolicy)
}

// RobotsPolicy returns the policy text without a compiler, for callers that
// need its exact size.
func RobotsPolicy() string {
	return robotsPolicy
}
