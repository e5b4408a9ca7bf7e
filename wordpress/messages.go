package wordpress

import "fmt"

// Remediation catalog for the diagnostics engine. This text is shown to
// site owners verbatim, so it names literal files, literal config lines and
// ordered steps they can follow without a developer.

// serverSoftware is what step 2 learned from the Server response header.
// Step 3's header-stripping remediation branches on it.
type serverSoftware int

const (
	serverUnknown serverSoftware = iota
	serverApache
	serverNginx
)

const apacheHtaccessSnippet = `RewriteEngine On
RewriteCond %{HTTP:Authorization} ^(.*)
RewriteRule ^(.*) - [E=HTTP_AUTHORIZATION:%1]`

const nginxConfSnippet = `proxy_set_header Authorization $http_authorization;
fastcgi_param HTTP_AUTHORIZATION $http_authorization;`

const wpConfigRecoverySnippet = `if (empty($_SERVER['HTTP_AUTHORIZATION']) && !empty($_SERVER['REDIRECT_HTTP_AUTHORIZATION'])) {
    $_SERVER['HTTP_AUTHORIZATION'] = $_SERVER['REDIRECT_HTTP_AUTHORIZATION'];
}`

func detailDNSFailure(host string) string {
	return fmt.Sprintf(`The site's domain name could not be resolved (DNS lookup failed for %s).

What to check, in order:
1. Open the site URL in your browser. If it does not load there either, the domain may have expired or its DNS records may be missing.
2. Verify the site URL is spelled correctly in the connection settings, including the subdomain (www vs. no www).
3. If the domain was registered or moved recently, DNS changes can take up to 48 hours to propagate.`, host)
}

func detailConnectionRefused(host string) string {
	return fmt.Sprintf(`The server at %s is refusing connections. The domain resolves, but nothing is answering on the web port.

What to check, in order:
1. Ask your hosting provider whether the web server is running. A crashed or stopped web server is the most common cause.
2. If the site uses a non-standard port, make sure it is included in the site URL.
3. Check for a host-level firewall blocking outside connections.`, host)
}

func detailConnectionTimeout(host string) string {
	return fmt.Sprintf(`The connection to %s timed out. The server did not answer within the allowed time.

What to check, in order:
1. Open the site in your browser. If it is very slow there too, the server is overloaded - contact your hosting provider.
2. Some firewalls silently drop traffic from unknown sources instead of refusing it, which looks exactly like this. Ask your host whether a firewall or DDoS protection service could be dropping requests from this dashboard's IP address.`, host)
}

func detailTLSFailure(host string) string {
	return fmt.Sprintf(`A secure connection to %s could not be established. The TLS certificate is invalid, expired, or does not match the domain.

What to check, in order:
1. Open the site in your browser and look for a certificate warning.
2. If the certificate expired, renew it in your hosting control panel (most hosts offer free Let's Encrypt certificates that renew automatically).
3. If you connect via "www" but the certificate only covers the bare domain (or the reverse), update the site URL here to match the certificate.`, host)
}

func detailGenericNetworkFailure(host string) string {
	return fmt.Sprintf(`The site at %s could not be reached, and the failure did not match a known pattern.

Open the site in your browser to confirm it is up, then re-run the check. If it keeps failing, contact your hosting provider with the time of this check.`, host)
}

const detailRESTNotFound = `The WordPress REST API was not found at /wp-json/ (HTTP 404).

What to check, in order:
1. In the WordPress admin, go to Settings > Permalinks and make sure a "pretty" permalink structure is selected (anything except "Plain"). Click Save Changes even if nothing changed - this rewrites the routing rules.
2. Some security plugins offer an option to "disable the REST API". If one is installed, allow the REST API at least for authenticated users.
3. If the URL does not point to a WordPress installation at all, correct the site URL in the connection settings.`

const detailRESTForbidden = `Access to the WordPress REST API at /wp-json/ is being blocked (HTTP 403).

What to check, in order:
1. A security plugin (Wordfence, iThemes Security, and similar) is the most common cause. Look for a REST API or firewall setting and allow access to /wp-json/.
2. The block can also come from the server itself (a rule in .htaccess or the nginx configuration). Ask your hosting provider whether requests to /wp-json/ are filtered.
3. If your host provides a web application firewall (Cloudflare, Sucuri), check its event log for blocked requests to /wp-json/.`

const detailRESTNotJSON = `The address /wp-json/ answered, but with a web page instead of API data.

This usually means one of the following:
1. The site is in maintenance mode - finish or cancel the pending update and try again.
2. A security plugin is showing a challenge or login page in front of the API. Allow API access for authenticated requests.
3. The site URL redirects somewhere else (for example to a parking page or a different domain). Open the URL in your browser and check where it lands.`

func detailAuthHeaderStripped(server serverSoftware) string {
	intro := `The site answered "not logged in" even though credentials were sent. This almost always means the web server or a reverse proxy is removing the Authorization header before WordPress can read it, so every request arrives anonymous.

Three ways to fix it, in order of preference:`

	install := `1. Install the companion plugin on the site. It reads the credentials from a fallback header that proxies do not strip, which makes this problem disappear without server changes.`

	var serverFix string
	switch server {
	case serverApache:
		serverFix = `2. The site runs on Apache or LiteSpeed. Add these lines near the top of the .htaccess file in the WordPress root directory, right after "RewriteEngine On":

` + apacheHtaccessSnippet
	case serverNginx:
		serverFix = `2. The site runs on nginx. Add these directives to the site's server block (inside the location handling PHP), then reload nginx:

` + nginxConfSnippet
	default:
		serverFix = `2. Ask your hosting provider to forward the Authorization header to PHP. On Apache/LiteSpeed that is an .htaccess rewrite rule; on nginx it is a proxy_set_header/fastcgi_param directive.`
	}

	bootstrap := `3. As a last resort, add this snippet to wp-config.php, above the line that says "That's all, stop editing":

` + wpConfigRecoverySnippet

	return intro + "\n\n" + install + "\n\n" + serverFix + "\n\n" + bootstrap
}

const detailBadAppPassword = `The username was recognized but the application password was rejected.

Application passwords are separate from the normal login password. To fix:
1. Log in to the WordPress admin as this user.
2. Go to Users > Profile and scroll to "Application Passwords".
3. Revoke the old entry for this dashboard if present, create a new application password, and paste it into the connection settings exactly as shown (spaces are fine).`

const detailUnknownUsername = `No user with this username exists on the site.

Note that this must be the WordPress username, not the email address used to log in. You can see the exact username in the WordPress admin under Users - it is shown in the "Username" column.`

const detailAuthForbidden = `The site recognized the credentials but refused the request (HTTP 403) before WordPress could process it.

A security plugin blocking authenticated REST requests is the most common cause. Check its firewall log and allow REST API access for this user, then re-run the check.`

const detailAuthEndpointMissing = `The user endpoint of the REST API returned 404 even though /wp-json/ itself is available. Part of the REST API has been disabled.

Check security plugins for per-route REST API controls and re-enable the core "users" routes, then re-run the check.`

func detailAdminRoleMissing(username string) string {
	return fmt.Sprintf(`The user "%s" authenticated successfully but is not an administrator, so remote management operations would be refused.

In the WordPress admin, go to Users, edit this user, and set their role to Administrator - or reconnect the dashboard using an administrator account's application password.`, username)
}

func detailMuPluginMissing(sshOnFile bool) string {
	base := `The connection is healthy, but the companion plugin is not installed on the site. Basic content operations work without it; cache clearing, updates, maintenance mode and the other advanced operations need it.

To install it:
1. Download the companion plugin file from the dashboard's integration page.
2. Upload it to the wp-content/mu-plugins/ directory of the site (create the directory if it does not exist).
3. Add the shared secret constant from the integration page to wp-config.php.
4. Re-run this check.`
	if sshOnFile {
		base += `

SSH credentials are on file for this site, so you can also use the "Deploy companion plugin" button to install it automatically.`
	}
	return base
}

const detailSharedSecretMismatch = `The companion plugin is installed but rejected the shared secret. The secret stored in this dashboard does not match the one configured on the site.

Compare the shared secret in the connection settings with the constant defined in wp-config.php on the site. They must match exactly. If the secret was rotated on either side, update the other side to match.`

const detailCompanionNotConfigured = `The companion plugin is installed but its shared secret constant has not been configured on the site, so it refuses all requests.

Add the shared secret constant from the integration page to wp-config.php, above the line that says "That's all, stop editing", then re-run this check.`

const detailCompanionAuthAnomaly = `Authentication succeeded against the standard WordPress API but failed against the companion plugin's routes on the same site. Something between the dashboard and WordPress treats the two paths differently.

A caching layer or security plugin that handles /wp-json/dashboard/ routes separately is the usual cause. Check for per-path cache or firewall rules covering /wp-json/dashboard/ and exclude that path from caching and challenges.`
