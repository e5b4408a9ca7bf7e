package services

import "fmt"

// CompanionPluginSource renders the companion mu-plugin with the site's
// shared secret baked in. The rendered file is what the SSH deployer
// uploads; manual installs use the same file downloaded from the dashboard.
//
// The PHP side mirrors the contract in the companion package: secret gate
// with a distinct not-configured error, write-confirmation header on
// mutating routes, {code, message} error bodies.
func CompanionPluginSource(sharedSecret string) []byte {
	return []byte(fmt.Sprintf(companionPluginTemplate, sharedSecret))
}

const companionPluginTemplate = `<?php
/**
 * Plugin Name: Dashboard Companion
 * Description: Administrative REST surface for the agency dashboard.
 * Version: 1.0.0
 */

if (!defined('ABSPATH')) {
    exit;
}

if (!defined('DASHBOARD_SHARED_SECRET')) {
    define('DASHBOARD_SHARED_SECRET', '%s');
}

// Recover the Authorization header when the server strips it.
if (empty($_SERVER['HTTP_AUTHORIZATION']) && !empty($_SERVER['REDIRECT_HTTP_AUTHORIZATION'])) {
    $_SERVER['HTTP_AUTHORIZATION'] = $_SERVER['REDIRECT_HTTP_AUTHORIZATION'];
}

require_once __DIR__ . '/dashboard-companion/routes.php';
`
