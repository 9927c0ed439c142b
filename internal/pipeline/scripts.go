package pipeline

import (
	"encoding/json"
	"fmt"
	"time"
)

// Replies from the injection script.
const (
	injectTyped   = "typed"
	injectNoInput = "no-input"
)

// recencyJS approximates when a tab was last used: "now" for the tab the
// user is looking at, otherwise the document load time.
const recencyJS = `(function () {
  try {
    if (document.visibilityState === "visible" || document.hasFocus()) {
      return String(Date.now());
    }
    return String(Math.round(performance.timeOrigin));
  } catch (e) {
    return "";
  }
})()`

const innerTextJS = `(function () {
  var b = document.body;
  return b ? b.innerText : "";
})()`

const outerHTMLJS = `(function () {
  var d = document.documentElement;
  return d ? d.outerHTML : "";
})()`

// injectTemplate types the query into the first matching input, notifies
// the page's own bindings, then presses Enter after a short delay so the
// page's enable/validation logic has run. keyCode and which are read-only
// on synthetic events, hence the defineProperty calls.
const injectTemplate = `(function () {
  var query = %s;
  var selectors = %s;
  var delay = %d;
  var el = null;
  for (var i = 0; i < selectors.length && !el; i++) {
    try { el = document.querySelector(selectors[i]); } catch (e) {}
  }
  if (!el) { return %q; }
  try { el.focus(); } catch (e) {}
  if (el.isContentEditable) {
    el.textContent = query;
  } else {
    var proto = Object.getPrototypeOf(el);
    var desc = proto && Object.getOwnPropertyDescriptor(proto, "value");
    if (desc && desc.set) { desc.set.call(el, query); } else { el.value = query; }
  }
  el.dispatchEvent(new Event("input", { bubbles: true }));
  el.dispatchEvent(new Event("change", { bubbles: true }));
  setTimeout(function () {
    ["keydown", "keypress", "keyup"].forEach(function (type) {
      var ev = new KeyboardEvent(type, {
        key: "Enter", code: "Enter", keyCode: 13, which: 13,
        bubbles: true, cancelable: true
      });
      try {
        Object.defineProperty(ev, "keyCode", { get: function () { return 13; } });
        Object.defineProperty(ev, "which", { get: function () { return 13; } });
      } catch (e) {}
      el.dispatchEvent(ev);
    });
  }, delay);
  return %q;
})()`

// injectJS renders the injection script. Values are embedded as JSON
// literals, which are valid JavaScript.
func injectJS(query string, selectors []string, delay time.Duration) (string, error) {
	q, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	s, err := json.Marshal(selectors)
	if err != nil {
		return "", fmt.Errorf("failed to encode selectors: %w", err)
	}
	return fmt.Sprintf(injectTemplate, q, s, delay.Milliseconds(), injectNoInput, injectTyped), nil
}
