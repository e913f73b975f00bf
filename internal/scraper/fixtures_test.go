package scraper

const productPage = `<!DOCTYPE html>
<html>
<head><title>Amazon.com: Acme Anvil 50lb : Tools</title></head>
<body>
<div id="centerCol">
  <h1 id="title"><span id="productTitle">
      Acme Anvil 50lb, Cast Iron
  </span></h1>
  <a id="bylineInfo" href="/stores/Acme">Visit the Acme Store</a>
  <div id="averageCustomerReviews">
    <span id="acrPopover" title="4.6 out of 5 stars"><span class="a-icon-alt">4.6 out of 5 stars</span></span>
  </div>
  <div id="corePriceDisplay_desktop_feature_div">
    <span class="a-price">
      <span class="a-offscreen">$1,299.99</span>
      <span aria-hidden="true">
        <span class="a-price-symbol">$</span><span class="a-price-whole">1,299<span class="a-price-decimal">.</span></span><span class="a-price-fraction">99</span>
      </span>
    </span>
  </div>
</div>
<div id="imgTagWrapperId">
  <img id="landingImage" src="https://m.media-amazon.com/images/I/anvil._SX300_.jpg"
       data-old-hires="https://m.media-amazon.com/images/I/anvil._SL1500_.jpg">
</div>
<div class="recommendations">
  <span class="a-price"><span class="a-offscreen">$5.00</span></span>
</div>
</body>
</html>`

const productPageNoPrice = `<html><body>
<span id="productTitle">Discontinued Widget</span>
<div id="bylineInfo">Brand: Widgetco</div>
<img id="imgBlkFront" src="data:image/gif;base64,R0lGOD" data-a-dynamic-image='{"https://img.example/widget-large.jpg":[1500,1500],"https://img.example/widget-small.jpg":[300,300]}'>
</body></html>`

const productPageEuropean = `<html><head><meta property="og:title" content="Kaffeemaschine Deluxe"></head><body>
<div id="apex_desktop"><span class="a-offscreen">1.299,00 €</span></div>
<div id="detailBullets_feature_div"><ul>
  <li><span class="a-text-bold">Hersteller :</span><span>Kaffee AG</span></li>
  <li><span class="a-text-bold">Brand :</span><span>Kaffeeland</span></li>
</ul></div>
<div id="main-image-container"><img id="main-image" data-src="https://img.example/kaffee.jpg"></div>
</body></html>`

const captchaPage = `<html><head><title>Robot Check</title></head><body>
<p>Enter the characters you see below</p>
<form action="/errors/validateCaptcha"><input name="field-keywords"></form>
</body></html>`

const searchPage1 = `<html><body>
<div class="s-main-slot">
  <div data-component-type="s-search-result" data-asin="B0AAAAAAA1" class="s-result-item">
    <div class="s-product-image-container">
      <img class="s-image" src="https://img.example/a1.jpg" srcset="https://img.example/a1.jpg 1x, https://img.example/a1-2x.jpg 2x">
    </div>
    <div class="a-row"><span class="a-size-base-plus a-color-base">Acme</span></div>
    <h2><a class="a-link-normal" href="/Acme-Anvil/dp/B0AAAAAAA1/ref=sr_1_1"><span>Acme Anvil</span></a></h2>
    <span class="a-icon-alt">4.5 out of 5 stars</span>
    <span aria-label="1,234 ratings">(1,234)</span>
    <span class="a-price"><span class="a-offscreen">$29.99</span></span>
    <span class="a-price a-text-price"><span class="a-offscreen">$39.99</span></span>
    <i class="a-icon a-icon-prime" aria-label="Amazon Prime"></i>
    <span class="a-badge-text">Best Seller</span>
    <div class="s-color-swatch-container">
      <div class="s-color-swatch-outer-circle"><a aria-label="Black" href="/Acme-Anvil-Black/dp/B0AAAAAAB1/ref=sr_1_1?th=1"></a></div>
      <div class="s-color-swatch-outer-circle"><a aria-label="Red" href="https://www.amazon.com/gp/product/B0AAAAAAB2"></a></div>
      <div class="s-color-swatch-outer-circle"><a aria-label="" href="/dp/B0AAAAAAB3"></a></div>
      <div class="s-color-swatch-outer-circle"><a aria-label="Blue" href="/collections/blue-anvils"></a></div>
    </div>
    <div class="a-row a-size-base">
      <div class="a-row"><span>FREE delivery <span class="a-text-bold">Tue, Oct 20</span></span></div>
    </div>
  </div>
  <div data-component-type="s-search-result" data-asin="B0AAAAAAA2" class="s-result-item AdHolder">
    <h2><a class="a-link-normal" href="/sponsored/dp/B0AAAAAAA2"><span>Sponsored Anvil</span></a></h2>
  </div>
  <div data-component-type="s-search-result" data-asin="" class="s-result-item">
    <h2><a class="a-link-normal" href="/x"><span>Divider</span></a></h2>
  </div>
  <div data-component-type="s-search-result" data-asin="B0AAAAAAA3" class="s-result-item">
    <h2><a class="a-link-normal" aria-label="Roadrunner Trap Kit" href="/dp/B0AAAAAAA3"></a></h2>
    <span class="a-price"><span class="a-price-symbol">$</span><span class="a-price-whole">12<span class="a-price-decimal">.</span></span><span class="a-price-fraction">50</span></span>
    <span>Save 20% off coupon</span>
    <span class="a-badge"><span class="a-badge-text">Limited time deal</span></span>
    <span aria-label="2.3K reviews">2.3K</span>
  </div>
</div>
<span class="s-pagination-strip">
  <a class="s-pagination-next" href="/s?k=anvil&amp;page=2">Next</a>
</span>
</body></html>`

const searchPageEmpty = `<html><body>
<div class="s-main-slot"><div class="s-no-outline">No results for anvil.</div></div>
<span class="s-pagination-strip">
  <a class="s-pagination-next" href="/s?k=anvil&amp;page=3">Next</a>
</span>
</body></html>`

const searchPage2 = `<html><body>
<div data-component-type="s-search-result" data-asin="B0AAAAAAA3">
  <h2><a class="a-link-normal" href="/dp/B0AAAAAAA3"><span>Roadrunner Trap Kit</span></a></h2>
</div>
<div data-component-type="s-search-result" data-asin="B0AAAAAAA4">
  <h2><a class="a-link-normal" href="/dp/B0AAAAAAA4"><span>Giant Magnet</span></a></h2>
</div>
<span class="s-pagination-strip">
  <span class="s-pagination-next s-pagination-disabled">Next</span>
</span>
</body></html>`
