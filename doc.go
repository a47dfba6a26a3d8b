// Package lightbox is a headless view engine for an in-page media viewer.
//
// A page is an HTML document (see lib/dom). Links marked with
// data-<prefix>-active="1" become content items; clicking one shows it in a
// viewer, which renders the item through its theme's layout template.
//
// # Core Concepts
//
// Every component (viewer, group, theme, template, content item) embeds
// *Component, which provides an id, attributes, status flags, an event bus
// and lazy DOM binding. Attributes are merged from the kind's defaults, the
// controller options, constructor arguments and data-<prefix>-* attributes
// on the bound element, later sources winning:
//
//	<a href="/a.jpg" data-slb-active="1" data-slb-group="trip"
//	   data-slb-title="Beach">
//
// The View is the controller for one page. It is passed to every component
// and owns the registries, handlers, history and viewport:
//
//	doc, _ := dom.ParseString(page)
//	view, _ := lightbox.New(doc, lightbox.DefaultOptions())
//	view.Init()
//	view.Click(link)
//
// # Themes and Templates
//
// A theme binds a Model to a viewer. Models form a parent chain; layout,
// fields, transitions and measurements are inherited from the nearest
// ancestor that defines them. The layout is markup with template tags:
//
//	<div class="frame">{{item.content}}<p>{{item.title}}</p>{{ui.close}}</div>
//
// Tags have the form {{name.prop|key:value}}. The name selects a TagHandler
// registered with View.RegisterTag; item and ui are built in.
//
// # Rendering
//
// Showing an item locks the viewer until the item changes or the viewer
// closes. Rendering fires render-loading on the theme while the item loads,
// writes every tag in document order, then fires render-complete. All
// asynchronous steps are lib/async promises, and the viewer re-checks that
// it is still active after each one.
//
// # Transitions
//
// Theme models supply TransitionFuncs for open, close, load, unload and
// complete. A missing or failing transition is not an error: the viewer
// applies the plain CSS state instead.
package lightbox
