package renderer

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// newStealthTab opens a tab with the stealth bundle's evasions preloaded.
func newStealthTab(browser *rod.Browser) (*rod.Page, error) {
	return stealth.Page(browser)
}

// hardenTab layers the overrides the stealth bundle doesn't cover: a
// desktop viewport and the navigator surfaces headless Chrome leaves bare.
func hardenTab(page *rod.Page) error {
	err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1920,
		Height: 1080,
	})
	if err != nil {
		return err
	}

	_, err = page.Eval(hardenJS)
	return err
}

const hardenJS = `() => {
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined
	});

	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en']
	});

	Object.defineProperty(navigator, 'plugins', {
		get: () => [
			{name: "Chrome PDF Plugin", filename: "internal-pdf-viewer", description: "Portable Document Format", length: 1},
			{name: "Chrome PDF Viewer", filename: "mhjfbmdgcfjbbpaeojofohoefgiehjai", description: "Portable Document Format", length: 1}
		]
	});

	const getParameter = WebGLRenderingContext.prototype.getParameter;
	WebGLRenderingContext.prototype.getParameter = function(parameter) {
		if (parameter === 37445) {
			return 'Intel Inc.';
		}
		if (parameter === 37446) {
			return 'Intel Iris OpenGL Engine';
		}
		return getParameter.apply(this, arguments);
	};
}`
